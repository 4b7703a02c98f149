package domain

// DefaultFamilies возвращает встроенный каталог: калитка из вертикального
// профиля, секция 3D-панели и навес.
func DefaultFamilies() []*Family {
	return []*Family{
		verticalProfileGate(),
		panelFence(),
		canopy(),
	}
}

func ralPalette(withCustom bool) []Option {
	opts := []Option{
		{ID: "ral7024", Label: "Графит (RAL 7024)", Swatch: "#474a51"},
		{ID: "ral8017", Label: "Шоколад (RAL 8017)", Swatch: "#45322e"},
		{ID: "ral9005", Label: "Чёрный (RAL 9005)", Swatch: "#0a0a0a"},
		{ID: "ral6005", Label: "Зелёный мох (RAL 6005)", Swatch: "#2f4538"},
		{ID: "ral7016", Label: "Антрацит (RAL 7016)", Swatch: "#293133"},
	}
	if withCustom {
		opts = append(opts, Option{ID: "custom", Label: "Любой цвет по RAL", Custom: true})
	}
	return opts
}

func verticalProfileGate() *Family {
	return &Family{
		ID:           "gate-vp",
		Kind:         KindVerticalProfile,
		Name:         "Калитка из вертикального профиля",
		Series:       "VP",
		Description:  "Сварная калитка с заполнением вертикальным профилем.",
		BasePrice:    5200,
		Variants:     []Variant{VariantStandard, VariantCustom},
		HeightBounds: Bounds{Min: 120, Max: 220},
		WidthBounds:  Bounds{Min: 90, Max: 150},
		Pricing: Pricing{
			BaselineHeight:     160,
			BaselineWidth:      100,
			CustomRate:         0.08,
			SizeScaling:        ScaleAlways,
			CustomColorPremium: 1.05,
			RoundTo:            1,
		},
		Categories: []Category{
			{
				ID: "height", Label: "Высота", Role: RoleHeight, Pricing: PricingNone,
				Options: []Option{
					{ID: "120", Label: "120 см", Value: 120},
					{ID: "140", Label: "140 см", Value: 140},
					{ID: "160", Label: "160 см", Value: 160},
					{ID: "180", Label: "180 см", Value: 180},
					{ID: "200", Label: "200 см", Value: 200},
				},
			},
			{
				ID: "width", Label: "Ширина", Role: RoleWidth, Pricing: PricingNone,
				Options: []Option{
					{ID: "90", Label: "90 см", Value: 90},
					{ID: "100", Label: "100 см", Value: 100},
					{ID: "120", Label: "120 см", Value: 120},
					{ID: "150", Label: "150 см", Value: 150},
				},
			},
			{
				ID: "profile", Label: "Профиль", Pricing: PricingFactor,
				Options: []Option{
					{ID: "p20", Label: "20×20 мм", Factor: 1.0},
					{ID: "p40", Label: "40×20 мм", Factor: 1.06},
					{ID: "p60", Label: "60×20 мм", Factor: 1.12},
				},
			},
			{
				ID: "fill", Label: "Тип заполнения", Pricing: PricingFactor,
				Options: []Option{
					{ID: "standard", Label: "Стандартное", Factor: 1.0},
					{ID: "dense", Label: "Плотное", Factor: 1.08},
					{ID: "jalousie", Label: "Жалюзи", Factor: 1.15},
				},
			},
			{
				ID: "spacing", Label: "Шаг между профилями", Pricing: PricingNone,
				Options: []Option{
					{ID: "s10", Label: "10 мм", Value: 10},
					{ID: "s20", Label: "20 мм", Value: 20},
					{ID: "s30", Label: "30 мм", Value: 30},
					{ID: "s40", Label: "40 мм", Value: 40},
					{ID: "s60", Label: "60 мм", Value: 60, When: "sel.fill != 'jalousie'"},
				},
				Rules: []Rule{
					{Driver: "profile", Allowed: map[string][]string{
						"p20": {"s10", "s20", "s30"},
						"p40": {"s20", "s30", "s40"},
						"p60": {"s30", "s40", "s60"},
					}},
					{Driver: "fill", Allowed: map[string][]string{
						"dense":    {"s10", "s20"},
						"jalousie": {"s20", "s30", "s40"},
					}},
				},
			},
			{
				ID: "pattern", Label: "Рисунок", Role: RolePattern, Pricing: PricingFactor,
				Options: []Option{
					{ID: "smooth", Label: "Гладкий", Factor: 1.0},
					{ID: "oak", Label: "Золотой дуб", Factor: 1.03, GroupLabel: "Под дерево", Texture: "/textures/oak.jpg"},
					{ID: "walnut", Label: "Орех", Factor: 1.03, GroupLabel: "Под дерево", Texture: "/textures/walnut.jpg"},
					{ID: "stone", Label: "Камень", Factor: 1.05, GroupLabel: "Под камень", Texture: "/textures/stone.jpg"},
				},
			},
			{
				ID: "color", Label: "Цвет", Role: RoleColor, Pricing: PricingFactor,
				Options: ralPalette(true),
			},
			{
				ID: "finish", Label: "Покрытие", Pricing: PricingFactor,
				Options: []Option{
					{ID: "matte", Label: "Матовое", Factor: 1.0},
					{ID: "gloss", Label: "Глянец", Factor: 1.02},
					{ID: "textured", Label: "Муар", Factor: 1.04},
				},
			},
			{
				ID: "hardware", Label: "Фурнитура", Pricing: PricingSurcharge,
				Options: []Option{
					{ID: "none", Label: "Без фурнитуры"},
					{ID: "latch", Label: "Щеколда", Surcharge: 250},
					{ID: "lock", Label: "Врезной замок", Surcharge: 550},
					{ID: "lock_closer", Label: "Замок и доводчик", Surcharge: 1850},
				},
			},
		},
	}
}

func panelFence() *Family {
	return &Family{
		ID:           "fence-3d",
		Kind:         KindPanel,
		Name:         "Секция 3D-панельного забора",
		Series:       "3D",
		Description:  "Сварная панель с рёбрами жёсткости.",
		BasePrice:    3900,
		Variants:     []Variant{VariantStandard, VariantCustom},
		HeightBounds: Bounds{Min: 60, Max: 250},
		WidthBounds:  Bounds{Min: 100, Max: 300},
		Pricing: Pricing{
			BaselineHeight:     153,
			BaselineWidth:      250,
			CustomRate:         0.10,
			SizeScaling:        ScaleCustomOnly,
			CustomColorPremium: 1.08,
			RoundTo:            10,
		},
		Categories: []Category{
			{
				ID: "height", Label: "Высота панели", Role: RoleHeight, Pricing: PricingNone,
				Options: []Option{
					{ID: "103", Label: "1030 мм", Value: 103},
					{ID: "123", Label: "1230 мм", Value: 123},
					{ID: "153", Label: "1530 мм", Value: 153},
					{ID: "173", Label: "1730 мм", Value: 173},
					{ID: "203", Label: "2030 мм", Value: 203},
				},
			},
			{
				ID: "width", Label: "Ширина панели", Role: RoleWidth, Pricing: PricingNone,
				Options: []Option{
					{ID: "250", Label: "2500 мм", Value: 250},
				},
			},
			{
				ID: "wire", Label: "Пруток", Pricing: PricingFactor,
				Options: []Option{
					{ID: "w4", Label: "4 мм", Factor: 1.0},
					{ID: "w5", Label: "5 мм", Factor: 1.15},
				},
			},
			{
				ID: "color", Label: "Цвет", Role: RoleColor, Pricing: PricingFactor,
				Options: append(ralPalette(true), Option{ID: "zinc", Label: "Оцинковка без покраски", Factor: 0.92}),
			},
			{
				ID: "mounting", Label: "Крепление", Pricing: PricingNone,
				Options: []Option{
					{ID: "posts", Label: "На столбы"},
					{ID: "clamps", Label: "На скобы к существующим столбам"},
				},
			},
			{
				ID: "posts", Label: "Столбы", Pricing: PricingSurcharge,
				Options: []Option{
					{ID: "post60", Label: "Столб 60×40", Surcharge: 1200},
					{ID: "post80", Label: "Столб 80×80", Surcharge: 1900},
					{ID: "none", Label: "Без столбов"},
				},
				Rules: []Rule{
					{Driver: "mounting", Allowed: map[string][]string{
						"posts":  {"post60", "post80"},
						"clamps": {"none"},
					}},
				},
			},
		},
	}
}

func canopy() *Family {
	return &Family{
		ID:           "canopy",
		Kind:         KindCanopy,
		Name:         "Навес",
		Series:       "CN",
		Description:  "Односкатный навес на металлическом каркасе, размеры под заказ.",
		BasePrice:    18500,
		Variants:     []Variant{VariantCustom},
		HeightBounds: Bounds{Min: 200, Max: 350},
		WidthBounds:  Bounds{Min: 250, Max: 600},
		Pricing: Pricing{
			BaselineHeight:     250,
			BaselineWidth:      300,
			CustomRate:         0.10,
			SizeScaling:        ScaleCustomOnly,
			CustomColorPremium: 1.03,
			RoundTo:            10,
		},
		Categories: []Category{
			{
				ID: "roof", Label: "Кровля", Pricing: PricingFactor,
				Options: []Option{
					{ID: "polycarbonate", Label: "Сотовый поликарбонат", Factor: 1.0},
					{ID: "monolith", Label: "Монолитный поликарбонат", Factor: 1.18},
					{ID: "metal_tile", Label: "Металлочерепица", Factor: 1.12},
					{ID: "profnastil", Label: "Профнастил", Factor: 1.05},
				},
			},
			{
				ID: "thickness", Label: "Толщина покрытия", Pricing: PricingNone,
				Options: []Option{
					{ID: "t3", Label: "3 мм", Value: 3},
					{ID: "t4", Label: "4 мм", Value: 4},
					{ID: "t6", Label: "6 мм", Value: 6},
					{ID: "t8", Label: "8 мм", Value: 8},
					{ID: "t10", Label: "10 мм", Value: 10},
					{ID: "t05", Label: "0,5 мм", Value: 0.5},
				},
				Rules: []Rule{
					{Driver: "roof", Allowed: map[string][]string{
						"polycarbonate": {"t6", "t8", "t10"},
						"monolith":      {"t3", "t4"},
						"metal_tile":    {"t05"},
						"profnastil":    {"t05"},
					}},
				},
			},
			{
				ID: "frame", Label: "Каркас", Pricing: PricingFactor,
				Options: []Option{
					{ID: "pipe60", Label: "Труба 60×40", Factor: 1.0},
					{ID: "pipe80", Label: "Труба 80×80", Factor: 1.1},
				},
			},
			{
				ID: "color", Label: "Цвет каркаса", Role: RoleColor, Pricing: PricingFactor,
				Options: ralPalette(true),
			},
			{
				ID: "addon", Label: "Дополнительно", Pricing: PricingSurcharge,
				Options: []Option{
					{ID: "none", Label: "Без дополнений"},
					{ID: "gutter", Label: "Водосток", Surcharge: 2400},
					{ID: "lighting", Label: "Подсветка", Surcharge: 3500},
				},
			},
		},
	}
}
