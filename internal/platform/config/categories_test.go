package config

import "testing"

func TestCategoryPriorityCoversAllCategories(t *testing.T) {
	inPriority := make(map[string]bool, len(CategoryPriority))
	for _, c := range CategoryPriority {
		inPriority[c] = true
	}

	for _, ck := range Categories() {
		if !inPriority[ck.Category] {
			t.Errorf("category %q has keywords but no priority slot", ck.Category)
		}
	}

	if len(CategoryPriority) != len(Categories()) {
		t.Errorf("priority list has %d entries, keyword table has %d", len(CategoryPriority), len(Categories()))
	}
}

func TestCategoryPriorityBounds(t *testing.T) {
	if CategoryPriority[0] != CategoryPolitics {
		t.Errorf("first priority = %q, want %q", CategoryPriority[0], CategoryPolitics)
	}

	if CategoryPriority[len(CategoryPriority)-1] != CategoryWeather {
		t.Errorf("last priority = %q, want %q", CategoryPriority[len(CategoryPriority)-1], CategoryWeather)
	}
}

func TestKeywordListsNonEmpty(t *testing.T) {
	for _, ck := range Categories() {
		if len(ck.Keywords) == 0 {
			t.Errorf("category %q has an empty keyword list", ck.Category)
		}
	}
}

func TestIsKnownCategory(t *testing.T) {
	if !IsKnownCategory(CategoryPolitics) {
		t.Error("politics should be known")
	}

	if !IsKnownCategory(CategoryGeneral) {
		t.Error("general pseudo-category should be known")
	}

	if IsKnownCategory("chess") {
		t.Error("unknown label accepted")
	}
}

func TestPlanByKey(t *testing.T) {
	basic, ok := PlanByKey(PlanBasic)
	if !ok {
		t.Fatal("basic plan missing")
	}

	if basic.Unlimited() || *basic.CategoryLimit != 3 {
		t.Errorf("basic limit = %v, want 3", basic.CategoryLimit)
	}

	premium, ok := PlanByKey(PlanPremium)
	if !ok {
		t.Fatal("premium plan missing")
	}

	if !premium.Unlimited() {
		t.Error("premium should be unlimited")
	}

	if _, ok := PlanByKey("gold"); ok {
		t.Error("unknown plan key resolved")
	}
}
