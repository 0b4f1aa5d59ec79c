package catalog

import "testing"

func TestEnabledBookmakers_ExcludesOnexClub(t *testing.T) {
	for _, info := range EnabledBookmakers() {
		if info.ID == OnexClub {
			t.Fatalf("expected onexclub to be excluded from enabled bookmakers (disabled: %s)", info.DisabledReason)
		}
	}
}

func TestEnabledBookmakers_IncludesTheRest(t *testing.T) {
	enabled := EnabledBookmakers()
	if len(enabled) != len(AllBookmakers())-1 {
		t.Fatalf("expected all but one bookmaker enabled, got %d of %d", len(enabled), len(AllBookmakers()))
	}
}

func TestBookmakerName_UnknownID(t *testing.T) {
	var unknown Bookmaker = 999
	if name := unknown.Name(); name != "unknown" {
		t.Errorf("expected \"unknown\" for an unregistered bookmaker, got %q", name)
	}
}

func TestBookmakerInfo_RoundTrip(t *testing.T) {
	info, ok := Northline.Info()
	if !ok {
		t.Fatal("expected Northline to be registered")
	}
	if info.Name != "northline" || !info.Enabled {
		t.Errorf("unexpected info for Northline: %+v", info)
	}
}
