package product

import "testing"

func testCatalog() *Service {
	return NewService(NewInMemoryRepository([]Product{
		{ID: 1, Name: "MacBook Pro 16", Description: "Apple silicon laptop", Price: 550000, Category: "Mac"},
		{ID: 2, Name: "ThinkPad X1", Description: "business laptop", Price: 320000, Category: "Laptop"},
		{ID: 3, Name: "Gaming Tower", Description: "desktop computer", Price: 400000, Category: "Computer"},
		{ID: 4, Name: "USB-C Cable", Description: "charging cable", Price: 1500, Category: "all"},
	}))
}

func TestList_NoFilterReturnsEverything(t *testing.T) {
	out, err := testCatalog().List(Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(out) != 4 {
		t.Fatalf("expected 4 products, got %d", len(out))
	}
}

func TestList_CategoryIsCaseInsensitive(t *testing.T) {
	out, err := testCatalog().List(Filter{Category: "mac"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	// the "all" category product shows on every category page
	if len(out) != 2 {
		t.Fatalf("expected MacBook and the all-category cable, got %+v", out)
	}
}

func TestList_QueryMatchesNameAndDescription(t *testing.T) {
	svc := testCatalog()

	out, _ := svc.List(Filter{Query: "thinkpad"})
	if len(out) != 1 || out[0].ID != 2 {
		t.Fatalf("expected ThinkPad match, got %+v", out)
	}

	out, _ = svc.List(Filter{Query: "laptop"})
	if len(out) != 2 {
		t.Fatalf("expected description matches, got %+v", out)
	}
}

func TestList_PriceRangeIsInclusive(t *testing.T) {
	svc := testCatalog()

	out, _ := svc.List(Filter{MinPrice: 320000, MaxPrice: 400000})
	if len(out) != 2 {
		t.Fatalf("expected 2 products inside range, got %+v", out)
	}

	// zero max price means unbounded
	out, _ = svc.List(Filter{MinPrice: 400000})
	if len(out) != 2 {
		t.Fatalf("expected 2 products at or above 400000, got %+v", out)
	}
}

func TestList_CombinedFilters(t *testing.T) {
	out, _ := testCatalog().List(Filter{Category: "Laptop", Query: "business", MaxPrice: 350000})
	if len(out) != 1 || out[0].ID != 2 {
		t.Fatalf("expected only the ThinkPad, got %+v", out)
	}
}

func TestGetByID(t *testing.T) {
	svc := testCatalog()

	p, err := svc.GetByID(1)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if p.Name != "MacBook Pro 16" {
		t.Fatalf("unexpected product %+v", p)
	}

	if _, err := svc.GetByID(99); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListByIDs_PreservesOrderAndSkipsUnknown(t *testing.T) {
	out, err := testCatalog().ListByIDs([]int{3, 99, 1})
	if err != nil {
		t.Fatalf("ListByIDs: %v", err)
	}
	if len(out) != 2 || out[0].ID != 3 || out[1].ID != 1 {
		t.Fatalf("unexpected result %+v", out)
	}
}
