package configurator

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fence-shop-backend/internal/domain"
)

func TestNewSessionDefaults(t *testing.T) {
	c := newTestCatalog(t)

	s, err := c.NewSession("gate-vp")
	require.NoError(t, err)
	cfg := s.Configuration()
	assert.Equal(t, domain.VariantStandard, cfg.Variant)
	assert.Equal(t, 1, cfg.Quantity)
	assert.Len(t, cfg.Selections, len(s.Family().Categories))
	assert.True(t, s.IsValid())

	// у навеса только размеры под заказ, их ещё нет
	s, err = c.NewSession("canopy")
	require.NoError(t, err)
	assert.Equal(t, domain.VariantCustom, s.Configuration().Variant)
	assert.False(t, s.IsValid())

	_, err = c.NewSession("nope")
	assert.ErrorIs(t, err, ErrUnknownFamily)
}

func TestCustomHeightUnsetBlocksCartAdd(t *testing.T) {
	c := newTestCatalog(t)
	s, err := c.NewSession("gate-vp")
	require.NoError(t, err)

	require.NoError(t, s.SetVariant(domain.VariantCustom))
	s.SetCustomDimensionText(domain.DimHeight, "0")
	s.SetCustomDimension(domain.DimWidth, 100)

	assert.False(t, s.IsValid())
	err = s.Validate()
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "height", ve.Field)
	assert.Equal(t, "укажите высоту", ve.Message)

	_, err = NewLineBuilder().FromSession(s)
	assert.True(t, IsValidation(err))
}

func TestCustomDimensionOutOfBounds(t *testing.T) {
	c := newTestCatalog(t)
	s, err := c.NewSession("gate-vp")
	require.NoError(t, err)
	require.NoError(t, s.SetVariant(domain.VariantCustom))

	s.SetCustomDimension(domain.DimHeight, 300)
	s.SetCustomDimension(domain.DimWidth, 100)
	// значение хранится как есть, без обрезки
	assert.Equal(t, 300.0, *s.Configuration().Height)

	var ve *ValidationError
	require.True(t, errors.As(s.Validate(), &ve))
	assert.Equal(t, "укажите высоту от 120 до 220 см", ve.Message)

	s.SetCustomDimensionText(domain.DimHeight, "180,5")
	assert.Equal(t, 180.5, *s.Configuration().Height)
	assert.True(t, s.IsValid())

	s.SetCustomDimensionText(domain.DimHeight, "abc")
	assert.Nil(t, s.Configuration().Height)
}

func TestQuantityClamped(t *testing.T) {
	c := newTestCatalog(t)
	s, err := c.NewSession("gate-vp")
	require.NoError(t, err)

	for _, raw := range []string{"-5", "abc", "0", ""} {
		s.SetQuantityText(raw)
		assert.Equal(t, 1, s.Configuration().Quantity, raw)
	}
	s.SetQuantity(-5)
	assert.Equal(t, 1, s.Configuration().Quantity)

	s.SetQuantityText(" 3 ")
	assert.Equal(t, 3, s.Configuration().Quantity)
	assert.Equal(t, s.UnitPrice()*3, s.LineTotal())

	s.SetQuantity(1 << 62)
	assert.Equal(t, domain.MaxQuantity, s.Configuration().Quantity)
	assert.Equal(t, s.UnitPrice()*domain.MaxQuantity, s.LineTotal())
	s.SetQuantityText("9223372036854775807")
	assert.Equal(t, domain.MaxQuantity, s.Configuration().Quantity)
}

func TestSelectRejectsUnavailableWithoutChange(t *testing.T) {
	c := newTestCatalog(t)
	s, err := c.NewSession("gate-vp")
	require.NoError(t, err)
	before := s.Configuration()

	assert.ErrorIs(t, s.Select("spacing", "s60"), ErrOptionUnavailable)
	assert.ErrorIs(t, s.Select("nope", "x"), ErrUnknownCategory)
	assert.Equal(t, before, s.Configuration())

	c2 := newTestCatalog(t)
	cs, err := c2.NewSession("canopy")
	require.NoError(t, err)
	assert.ErrorIs(t, cs.SetVariant(domain.VariantStandard), ErrVariantUnsupported)
}

func TestNotesAndColorCodeTrimmed(t *testing.T) {
	c := newTestCatalog(t)
	s, err := c.NewSession("gate-vp")
	require.NoError(t, err)

	s.SetNote("  монтаж в субботу  ")
	assert.Equal(t, "монтаж в субботу", s.Configuration().Notes)

	s.SetNote(strings.Repeat("я", MaxNoteLength+10))
	assert.Equal(t, MaxNoteLength, len([]rune(s.Configuration().Notes)))

	s.SetColorCode(" 3005 ")
	assert.Equal(t, "3005", s.Configuration().ColorCode)
}

func TestRestoreCorrectsStaleConfiguration(t *testing.T) {
	c := newTestCatalog(t)
	h := 150.0
	s, err := c.Restore(domain.Configuration{
		FamilyID:   "gate-vp",
		Variant:    "weird",
		Selections: map[string]string{"profile": "p40", "spacing": "s10"},
		Height:     &h,
		Quantity:   -2,
	})
	require.NoError(t, err)

	cfg := s.Configuration()
	assert.Equal(t, domain.VariantStandard, cfg.Variant)
	assert.Equal(t, "p40", cfg.Selections["profile"])
	assert.Equal(t, "s20", cfg.Selections["spacing"])
	assert.Equal(t, []string{"spacing"}, s.Corrected())
	assert.Equal(t, 1, cfg.Quantity)
	assert.Equal(t, 150.0, *cfg.Height)
}

func TestConfigurationIsCopy(t *testing.T) {
	c := newTestCatalog(t)
	s, err := c.NewSession("gate-vp")
	require.NoError(t, err)

	cfg := s.Configuration()
	cfg.Selections["profile"] = "p60"
	assert.Equal(t, "p20", s.Configuration().Selections["profile"])
}
