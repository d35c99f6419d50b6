package handlers

import "fmt"

// Doctor checks the external tools kmecs can use and prints where they
// were found. A missing required tool is returned as an error.
func Doctor() error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	results := checkAllTools(settings.Kumactl)
	fmt.Fprintln(stdout, "Checking tools:")
	for _, r := range results.Results {
		switch {
		case r.Found && r.Version != "":
			fmt.Fprintf(stdout, "  ✓ %-10s %s (%s)\n", r.Tool.Name, r.Path, r.Version)
		case r.Found:
			fmt.Fprintf(stdout, "  ✓ %-10s %s\n", r.Tool.Name, r.Path)
		case r.Tool.Required:
			fmt.Fprintf(stdout, "  ✗ %-10s missing: %s\n", r.Tool.Name, r.Tool.Description)
			fmt.Fprintf(stdout, "    install: %s\n", r.Tool.InstallURL)
		default:
			fmt.Fprintf(stdout, "  - %-10s not found (optional): %s\n", r.Tool.Name, r.Tool.Description)
		}
	}

	if err := results.Error(); err != nil {
		fmt.Fprintln(stdout, "\nkumactl is only needed with --cert-generator kumactl (the default).")
		return err
	}
	return nil
}
