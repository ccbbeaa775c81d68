package cmd

import "testing"

func TestRootFlags(t *testing.T) {
	for _, name := range []string{"all", "interactive"} {
		f := rootCmd.Flags().Lookup(name)
		if f == nil {
			t.Fatalf("missing --%s", name)
		}
		if f.Shorthand != name[:1] {
			t.Fatalf("--%s shorthand = %q", name, f.Shorthand)
		}
	}
}

func TestAllFlagNamesExcludedBrowsers(t *testing.T) {
	usage := rootCmd.Flags().Lookup("all").Usage
	want := "Include info for all browsers, including Internet Explorer and Quest Browser."
	if usage != want {
		t.Fatalf("--all usage = %q want %q", usage, want)
	}
}
