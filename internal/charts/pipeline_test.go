package charts

import (
	"reflect"
	"testing"

	"covidviz/internal/models"
)

func TestFilterIsOrderedSubsequence(t *testing.T) {
	rows := testStore(t).OWID
	got := Filter(rows, DateEquals("2023-03-07"), KeyIn(KeyField("iso_code"), []string{"FRA", "USA", "XYZ"}))

	var keys []string
	for _, r := range got {
		keys = append(keys, r.Get("iso_code"))
	}
	if want := []string{"USA", "XYZ", "FRA"}; !reflect.DeepEqual(keys, want) {
		t.Errorf("keys = %v, want %v", keys, want)
	}

	if got := Filter(rows); len(got) != len(rows) {
		t.Errorf("no predicates should keep everything, got %d", len(got))
	}
	if got := Filter(nil, DateEquals("x")); len(got) != 0 {
		t.Error("filtering nothing yields nothing")
	}
}

func TestHasCentroid(t *testing.T) {
	store := testStore(t)
	got := Filter(store.OWID, HasCentroid(KeyField("iso_code"), store))
	for _, r := range got {
		if r.Get("iso_code") == "XYZ" {
			t.Fatal("XYZ has no centroid and must be filtered")
		}
	}
	if len(got) != 5 {
		t.Errorf("len = %d, want 5", len(got))
	}
}

func TestGroupByPartitions(t *testing.T) {
	rows := testStore(t).OWID
	key := KeyField("iso_code")
	groups := GroupBy(rows, key)

	if want := []string{"USA", "GBR", "XYZ", "FRA"}; !reflect.DeepEqual(groups.Keys(), want) {
		t.Errorf("keys = %v, want %v", groups.Keys(), want)
	}
	total := 0
	for _, g := range groups {
		for _, r := range g.Rows {
			if key(r) != g.Key {
				t.Errorf("row %v in group %s", r.Get("iso_code"), g.Key)
			}
		}
		total += len(g.Rows)
	}
	if total != len(rows) {
		t.Errorf("groups hold %d rows, want %d", total, len(rows))
	}

	// Rows of a group stay in input order.
	usa := groups[0].Rows
	if usa[0].Get("date") != "2023-03-06" || usa[1].Get("date") != "2023-03-07" {
		t.Error("group order changed")
	}
}

func TestFlattenRestoresGroupedOrder(t *testing.T) {
	rows := rowsOf(t, "k,v\na,1\na,2\nb,3\nb,4\n")
	flat := GroupBy(rows, KeyField("k")).Flatten()
	if !reflect.DeepEqual(flat, rows) {
		t.Error("Flatten of contiguous groups should equal the input")
	}

	interleaved := rowsOf(t, "k,v\na,1\nb,2\na,3\n")
	var got []string
	for _, r := range GroupBy(interleaved, KeyField("k")).Flatten() {
		got = append(got, r.Get("v"))
	}
	if want := []string{"1", "3", "2"}; !reflect.DeepEqual(got, want) {
		t.Errorf("flatten = %v, want %v", got, want)
	}
}

func TestDomainOfSkipsNonNumeric(t *testing.T) {
	rows := rowsOf(t, "v\n5\nabc\n\n10\nNaN\n7\n")
	d := DomainOf(rows, Field("v"))
	if d.Empty() || d.Min != 5 || d.Max != 10 {
		t.Errorf("domain = %+v, want [5,10]", d)
	}

	if !DomainOf(rowsOf(t, "v\nx\n\n"), Field("v")).Empty() {
		t.Error("no numeric values should give an empty domain")
	}
	if !DomainOf(nil, Field("v")).Empty() {
		t.Error("no rows should give an empty domain")
	}
}

func TestAggregates(t *testing.T) {
	rows := rowsOf(t, "v\n5\nabc\n10\n")
	if got := SumOf(rows, Field("v")); got != 15 {
		t.Errorf("SumOf = %v", got)
	}
	if got, ok := MaxOf(rows, Field("v")); !ok || got != 10 {
		t.Errorf("MaxOf = %v, %v", got, ok)
	}
	if _, ok := MaxOf(models.Rows{}, Field("v")); ok {
		t.Error("MaxOf on nothing should not be ok")
	}

	t0, t1, ok := TimeExtent(testStore(t).OWID, DateField("date"))
	if !ok || t0.Format("01-02") != "03-06" || t1.Format("01-02") != "03-07" {
		t.Errorf("TimeExtent = %v %v %v", t0, t1, ok)
	}
}
