package configurator

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"fence-shop-backend/internal/domain"
)

// pickSelections строит выбор из индексов: i-я категория получает опцию
// idx[i] по модулю числа опций, отрицательный индекс означает пропуск.
func pickSelections(f *domain.Family, idx []int) map[string]string {
	sel := make(map[string]string)
	for i, cat := range f.Categories {
		if i >= len(idx) || idx[i] < 0 || len(cat.Options) == 0 {
			continue
		}
		sel[cat.ID] = cat.Options[idx[i]%len(cat.Options)].ID
	}
	return sel
}

func TestResolverAndPricingProperties(t *testing.T) {
	c, err := NewCatalog(domain.DefaultFamilies())
	if err != nil {
		t.Fatal(err)
	}
	families := c.Families()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	genIdx := gen.SliceOfN(10, gen.IntRange(-1, 20))

	properties.Property("available is never empty for a non-empty category", prop.ForAll(
		func(fi int, idx []int) bool {
			f := families[fi%len(families)]
			sel := pickSelections(f, idx)
			for _, cat := range f.Categories {
				if len(c.Available(f.ID, cat.ID, sel)) == 0 {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 100),
		genIdx,
	))

	properties.Property("reconciled selection is fully available", prop.ForAll(
		func(fi int, idx []int) bool {
			f := families[fi%len(families)]
			out, _ := c.Reconcile(f, pickSelections(f, idx))
			view := selectionView(f, out)
			for i := range f.Categories {
				cat := &f.Categories[i]
				if !containsOption(c.available(f, cat, view), out[cat.ID]) {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 100),
		genIdx,
	))

	properties.Property("price is deterministic and positive", prop.ForAll(
		func(fi int, idx []int, custom bool, h, w float64) bool {
			f := families[fi%len(families)]
			cfg := domain.Configuration{
				FamilyID:   f.ID,
				Variant:    domain.VariantStandard,
				Selections: pickSelections(f, idx),
			}
			if custom {
				cfg.Variant = domain.VariantCustom
				cfg.Height, cfg.Width = &h, &w
			}
			p1 := ComputeUnitPrice(f.BasePrice, f, cfg)
			p2 := ComputeUnitPrice(f.BasePrice, f, cfg)
			return p1 == p2 && p1 > 0
		},
		gen.IntRange(0, 100),
		genIdx,
		gen.Bool(),
		gen.Float64Range(-1000, 1000),
		gen.Float64Range(-1000, 1000),
	))

	properties.TestingRun(t)
}
