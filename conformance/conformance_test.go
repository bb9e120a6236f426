package conformance

import "testing"

func TestConformance(t *testing.T) {
	scenarios, err := LoadAll(DefaultTestPath)
	if err != nil {
		t.Fatalf("loading scenarios: %v", err)
	}
	if len(scenarios) == 0 {
		t.Fatal("no scenarios loaded")
	}

	for _, loaded := range scenarios {
		loaded := loaded
		t.Run(loaded.File+"/"+loaded.Scenario.Name, func(t *testing.T) {
			if skip, reason := loaded.Scenario.IsSkipped(); skip {
				t.Skip(reason)
			}
			got := Run(loaded.Scenario)
			if err := Check(loaded.Scenario, got); err != nil {
				t.Error(err)
			}
		})
	}
}
