package deps

import "context"

// Router splits a request between a package installer and a tool installer.
// Tools are fetched first: they land in a cache outside the project, so a
// later package failure leaves the project untouched.
type Router struct {
	Packages Installer
	Tools    Installer
}

// Install routes Dev and Runtime descriptors to Packages and Tool
// descriptors to Tools, then combines both outcomes.
func (r Router) Install(ctx context.Context, deps []Descriptor) (Outcome, error) {
	var packages, tools []Descriptor
	for _, d := range deps {
		if d.Kind == Tool {
			tools = append(tools, d)
		} else {
			packages = append(packages, d)
		}
	}

	outcomes := make([]Outcome, 0, 2)
	if len(tools) > 0 && r.Tools != nil {
		o, err := r.Tools.Install(ctx, tools)
		if err != nil {
			return Skipped, err
		}
		outcomes = append(outcomes, o)
	}
	if len(packages) > 0 && r.Packages != nil {
		o, err := r.Packages.Install(ctx, packages)
		if err != nil {
			return Skipped, err
		}
		outcomes = append(outcomes, o)
	}
	return Combine(outcomes...), nil
}

// Noop reports every request as already satisfied. It backs --skip-install.
var Noop Installer = InstallerFunc(func(context.Context, []Descriptor) (Outcome, error) {
	return Skipped, nil
})
