package report

import (
	"fmt"
	"strings"
)

// StackStatus is the live view of one planned stack.
type StackStatus struct {
	Name   string `json:"name"`
	Role   string `json:"role"`
	Exists bool   `json:"exists"`
	Status string `json:"status,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// SecretStatus is the live view of one zone secret.
type SecretStatus struct {
	Key    string `json:"key"`
	Exists bool   `json:"exists"`
}

// Status is re-derived from the remote stores on every call.
type Status struct {
	Zone                string         `json:"zone"`
	Region              string         `json:"region"`
	Stacks              []StackStatus  `json:"stacks"`
	Secrets             []SecretStatus `json:"secrets"`
	ControlPlaneAddress string         `json:"controlPlaneAddress,omitempty"`
}

// Deployed reports whether any stack of the zone exists.
func (s Status) Deployed() bool {
	for _, st := range s.Stacks {
		if st.Exists {
			return true
		}
	}
	return false
}

// RenderStatus renders a status table.
func RenderStatus(s Status) string {
	var b strings.Builder
	title := fmt.Sprintf("kmecs status: %s", s.Zone)
	if s.Region != "" {
		title += fmt.Sprintf(" (%s)", s.Region)
	}
	b.WriteString(titleStyle.Render(title))
	if s.Deployed() {
		b.WriteString(" " + readyStyle.Render("deployed"))
	} else {
		b.WriteString(" " + dimStyle.Render("not deployed"))
	}
	b.WriteString("\n")

	section(&b, "Stacks")
	for _, st := range s.Stacks {
		icon, style := liveIcon(st)
		status := st.Status
		if !st.Exists {
			status = "absent"
		}
		line := fmt.Sprintf("    %s %-24s %s", style(icon), st.Name, style(status))
		if st.Reason != "" {
			line += "  " + dimStyle.Render(st.Reason)
		}
		b.WriteString(line + "\n")
	}

	section(&b, "Secrets")
	for _, sec := range s.Secrets {
		if sec.Exists {
			fmt.Fprintf(&b, "    %s %-24s %s\n", readyStyle.Render(checkMark), sec.Key, readyStyle.Render(SecretPresent))
		} else {
			fmt.Fprintf(&b, "    %s %-24s %s\n", dimStyle.Render(pending), sec.Key, dimStyle.Render(SecretAbsent))
		}
	}

	if s.ControlPlaneAddress != "" {
		section(&b, "Control plane")
		fmt.Fprintf(&b, "    %s\n", s.ControlPlaneAddress)
	}
	return b.String()
}

func liveIcon(st StackStatus) (string, styleFunc) {
	switch {
	case !st.Exists:
		return pending, sf(dimStyle)
	case strings.HasSuffix(st.Status, "_FAILED") || strings.Contains(st.Status, "ROLLBACK"):
		return crossMark, sf(failedStyle)
	case strings.HasSuffix(st.Status, "_IN_PROGRESS"):
		return warnMark, sf(warningStyle)
	default:
		return checkMark, sf(readyStyle)
	}
}
