// Package report renders the human-readable summaries printed at the end
// of deploy, teardown and status. Rendering never talks to AWS: every
// value shown is passed in by the caller.
package report

import (
	"fmt"
	"strings"
)

// Stack row states as shown to the user.
const (
	StateApplied    = "APPLIED"
	StateFailed     = "FAILED"
	StateNotApplied = "NOT_APPLIED"
	StateDeleted    = "DELETED"
	StateApplying   = "APPLYING"
	StateDeleting   = "DELETING"
)

// Secret row statuses.
const (
	SecretCreated   = "created"
	SecretReused    = "reused"
	SecretPending   = "not created"
	SecretDeleted   = "deleted"
	SecretAbsent    = "absent"
	SecretKept      = "kept"
	SecretRemaining = "remaining"
	SecretPresent   = "present"
)

// StackRow is one stack in a deploy summary.
type StackRow struct {
	Name   string
	Role   string
	State  string
	Reason string
}

// SecretRow is one secret entry in a summary.
type SecretRow struct {
	Key    string
	Status string
	Reason string
}

// Deploy is the input of RenderDeploy.
type Deploy struct {
	Zone                string
	Region              string
	Mode                string
	Stacks              []StackRow
	Secrets             []SecretRow
	ControlPlaneAddress string
	Err                 error
}

// Teardown is the input of RenderTeardown.
type Teardown struct {
	Zone      string
	Region    string
	Cancelled bool
	Deleted   []string
	Absent    []string
	Remaining []StackRow
	Secrets   []SecretRow
}

// Empty reports whether the teardown stopped before it touched any
// resource.
func (t Teardown) Empty() bool {
	return !t.Cancelled && len(t.Deleted)+len(t.Absent)+len(t.Remaining)+len(t.Secrets) == 0
}

// RenderDeploy renders the deploy summary.
func RenderDeploy(d Deploy) string {
	var b strings.Builder
	renderHeader(&b, "deploy", d.Zone, d.Region, d.Err == nil)
	if d.Mode != "" {
		fmt.Fprintf(&b, "  %s\n", dimStyle.Render("mode: "+d.Mode))
	}

	section(&b, "Stacks")
	for _, s := range d.Stacks {
		icon, style := stackIcon(s.State)
		line := fmt.Sprintf("    %s %-24s %s", style(icon), s.Name, style(s.State))
		if s.Reason != "" {
			line += "  " + dimStyle.Render(s.Reason)
		}
		b.WriteString(line + "\n")
	}

	renderSecrets(&b, d.Secrets)

	if d.ControlPlaneAddress != "" {
		section(&b, "Control plane")
		fmt.Fprintf(&b, "    %s\n", d.ControlPlaneAddress)
	}

	section(&b, "Next steps")
	if d.Err != nil {
		fmt.Fprintf(&b, "    %s %s\n", failedStyle.Render(crossMark), d.Err)
		b.WriteString("    Stacks that were applied stay in place. Fix the cause and rerun deploy,\n")
		fmt.Fprintf(&b, "    or remove the zone with: kmecs teardown --zone-name %s --region %s\n", d.Zone, d.Region)
		return b.String()
	}
	fmt.Fprintf(&b, "    Check the zone:    kmecs status --zone-name %s --region %s\n", d.Zone, d.Region)
	fmt.Fprintf(&b, "    Remove the zone:   kmecs teardown --zone-name %s --region %s\n", d.Zone, d.Region)
	return b.String()
}

// RenderTeardown renders the teardown summary.
func RenderTeardown(t Teardown) string {
	var b strings.Builder
	if t.Cancelled {
		renderHeader(&b, "teardown", t.Zone, t.Region, true)
		fmt.Fprintf(&b, "  %s\n", warningStyle.Render("Cancelled, nothing was removed."))
		return b.String()
	}
	renderHeader(&b, "teardown", t.Zone, t.Region, len(t.Remaining) == 0)

	section(&b, "Removed stacks")
	if len(t.Deleted)+len(t.Absent) == 0 {
		fmt.Fprintf(&b, "    %s\n", dimStyle.Render("(none)"))
	}
	for _, name := range t.Deleted {
		fmt.Fprintf(&b, "    %s %s\n", readyStyle.Render(checkMark), name)
	}
	for _, name := range t.Absent {
		fmt.Fprintf(&b, "    %s %-24s %s\n", dimStyle.Render(checkMark), name, dimStyle.Render("did not exist"))
	}

	section(&b, "Remaining stacks")
	if len(t.Remaining) == 0 {
		fmt.Fprintf(&b, "    %s\n", dimStyle.Render("(none)"))
	}
	for _, s := range t.Remaining {
		line := fmt.Sprintf("    %s %s", failedStyle.Render(crossMark), s.Name)
		if s.Reason != "" {
			line += "  " + dimStyle.Render(s.Reason)
		}
		b.WriteString(line + "\n")
	}

	renderSecrets(&b, t.Secrets)
	return b.String()
}

func renderHeader(b *strings.Builder, command, zone, region string, ok bool) {
	title := fmt.Sprintf("kmecs %s: %s", command, zone)
	if region != "" {
		title += fmt.Sprintf(" (%s)", region)
	}
	b.WriteString(titleStyle.Render(title))
	if ok {
		b.WriteString(" " + readyStyle.Render("done"))
	} else {
		b.WriteString(" " + failedStyle.Render("incomplete"))
	}
	b.WriteString("\n")
}

func section(b *strings.Builder, name string) {
	b.WriteString(sectionStyle.Render("  " + name))
	b.WriteString("\n")
}

func renderSecrets(b *strings.Builder, rows []SecretRow) {
	if len(rows) == 0 {
		return
	}
	section(b, "Secrets")
	for _, s := range rows {
		icon, style := secretIcon(s.Status)
		line := fmt.Sprintf("    %s %-24s %s", style(icon), s.Key, style(s.Status))
		if s.Reason != "" {
			line += "  " + dimStyle.Render(s.Reason)
		}
		b.WriteString(line + "\n")
	}
}

func stackIcon(state string) (string, styleFunc) {
	switch state {
	case StateApplied, StateDeleted:
		return checkMark, sf(readyStyle)
	case StateFailed:
		return crossMark, sf(failedStyle)
	case StateApplying, StateDeleting:
		return warnMark, sf(warningStyle)
	default:
		return pending, sf(dimStyle)
	}
}

func secretIcon(status string) (string, styleFunc) {
	switch status {
	case SecretCreated, SecretDeleted, SecretPresent:
		return checkMark, sf(readyStyle)
	case SecretReused, SecretKept:
		return checkMark, sf(dimStyle)
	case SecretAbsent:
		return pending, sf(dimStyle)
	case SecretRemaining:
		return crossMark, sf(failedStyle)
	default:
		return pending, sf(dimStyle)
	}
}
