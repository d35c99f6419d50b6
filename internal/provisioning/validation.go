package provisioning

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/config"
)

// Severities of a ValidationError.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// AWS accepts VPC and subnet blocks between /16 and /28.
const (
	minPrefixLength = 16
	maxPrefixLength = 28
)

// ValidationError represents a pre-flight validation error or warning.
type ValidationError struct {
	Field    string // Option or file that failed validation
	Message  string // Human-readable error message
	Severity string // "error" or "warning"
}

// Error implements the error interface.
func (ve ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", ve.Severity, ve.Field, ve.Message)
}

// IsError returns true if this is an error (not a warning).
func (ve ValidationError) IsError() bool {
	return ve.Severity == SeverityError
}

// ValidationPhase checks the local inputs of a deploy before anything is
// created: templates, license file and network ranges.
type ValidationPhase struct {
	req config.DeployRequest
}

// NewValidationPhase creates a new validation phase.
func NewValidationPhase(req config.DeployRequest) *ValidationPhase {
	return &ValidationPhase{req: req}
}

// Name implements the Phase interface.
func (vp *ValidationPhase) Name() string {
	return "validation"
}

// Provision implements the Phase interface.
func (vp *ValidationPhase) Provision(ctx *Context) error {
	allErrors := validate(ctx, vp.req)

	var errs []string
	for _, ve := range allErrors {
		if ve.IsError() {
			errs = append(errs, ve.Error())
			ctx.Observer.Event(Event{Type: EventValidationError, Phase: vp.Name(), Resource: ve.Field, Message: ve.Message})
			continue
		}
		ctx.Observer.Event(Event{Type: EventValidationWarning, Phase: vp.Name(), Resource: ve.Field, Message: ve.Message})
	}

	if len(errs) > 0 {
		return fmt.Errorf("pre-flight validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

// validate runs all validation checks and returns any errors or warnings.
func validate(ctx *Context, req config.DeployRequest) []ValidationError {
	var errs []ValidationError

	// --- Templates ---

	for _, s := range ctx.Plan.Stacks {
		path := filepath.Join(req.TemplatesDir, s.Node.Template)
		info, err := os.Stat(path)
		switch {
		case err != nil:
			errs = append(errs, ValidationError{
				Field:    "--" + config.FlagTemplatesDir,
				Message:  fmt.Sprintf("template %s for stack %s: %v", path, s.Name, err),
				Severity: SeverityError,
			})
		case info.IsDir():
			errs = append(errs, ValidationError{
				Field:    "--" + config.FlagTemplatesDir,
				Message:  fmt.Sprintf("template %s for stack %s is a directory", path, s.Name),
				Severity: SeverityError,
			})
		}
	}

	// --- License ---

	if req.HasLicense() {
		info, err := os.Stat(req.LicenseFile)
		switch {
		case err != nil:
			errs = append(errs, ValidationError{
				Field:    "--" + config.FlagLicenseFile,
				Message:  err.Error(),
				Severity: SeverityError,
			})
		case info.Size() == 0:
			errs = append(errs, ValidationError{
				Field:    "--" + config.FlagLicenseFile,
				Message:  fmt.Sprintf("license file %s is empty", req.LicenseFile),
				Severity: SeverityError,
			})
		}
	}

	// --- Network ---

	for _, r := range []struct{ flag, cidr string }{
		{config.FlagVPCCIDR, req.VPCCIDR},
		{config.FlagSubnet1CIDR, req.Subnet1CIDR},
		{config.FlagSubnet2CIDR, req.Subnet2CIDR},
	} {
		_, ipNet, err := net.ParseCIDR(r.cidr)
		if err != nil {
			errs = append(errs, ValidationError{
				Field:    "--" + r.flag,
				Message:  fmt.Sprintf("invalid IPv4 CIDR: %v", err),
				Severity: SeverityError,
			})
			continue
		}
		ones, _ := ipNet.Mask.Size()
		if ones < minPrefixLength || ones > maxPrefixLength {
			errs = append(errs, ValidationError{
				Field:    "--" + r.flag,
				Message:  fmt.Sprintf("prefix /%d is outside the /%d to /%d range AWS accepts", ones, minPrefixLength, maxPrefixLength),
				Severity: SeverityError,
			})
		}
	}

	// --- Certificate ---

	if req.CertGenerator == config.CertGeneratorBuiltin {
		errs = append(errs, ValidationError{
			Field:    "--" + config.FlagCertGenerator,
			Message:  "the builtin generator issues a self-signed certificate that clients must trust explicitly",
			Severity: SeverityWarning,
		})
	}

	return errs
}
