package pricesource

// Category names used throughout the ledger and the price cache.
const (
	GramAltin       = "Gram Altın"
	HasAltin        = "Has Altın"
	CeyrekYeni      = "Çeyrek Altın (Yeni)"
	CeyrekEski      = "Çeyrek Altın (Eski)"
	YarimYeni       = "Yarım Altın (Yeni)"
	YarimEski       = "Yarım Altın (Eski)"
	TamYeni         = "Tam Altın (Yeni)"
	TamEski         = "Tam Altın (Eski)"
	AtaYeni         = "Ata Altın (Yeni)"
	AtaEski         = "Ata Altın (Eski)"
	BesliAtaYeni    = "Beşli Ata Altın (Yeni)"
	BesliAtaEski    = "Beşli Ata Altın (Eski)"
	GremseYeni      = "Gremse Altın (Yeni)"
	GremseEski      = "Gremse Altın (Eski)"
	OnDortAyarAltin = "14 Ayar Altın"
	YirmiIkiAyar    = "22 Ayar Altın"
)

// Category maps a vendor code to the category name.
type Category struct {
	Code string
	Name string
}

// Categories is the fixed table of tracked gold categories in vendor order.
// Codes not listed here (ounce, silver, platinum, ratios) are ignored.
var Categories = []Category{
	{Code: "GRAM_ALTIN", Name: GramAltin},
	{Code: "HAS_ALTIN", Name: HasAltin},
	{Code: "YENI_CEYREK", Name: CeyrekYeni},
	{Code: "ESKI_CEYREK", Name: CeyrekEski},
	{Code: "YENI_YARIM", Name: YarimYeni},
	{Code: "ESKI_YARIM", Name: YarimEski},
	{Code: "YENI_TAM", Name: TamYeni},
	{Code: "ESKI_TAM", Name: TamEski},
	{Code: "YENI_ATA", Name: AtaYeni},
	{Code: "ESKI_ATA", Name: AtaEski},
	{Code: "YENI_ATA5", Name: BesliAtaYeni},
	{Code: "ESKI_ATA5", Name: BesliAtaEski},
	{Code: "YENI_GREMSE", Name: GremseYeni},
	{Code: "ESKI_GREMSE", Name: GremseEski},
	{Code: "14_AYAR", Name: OnDortAyarAltin},
	{Code: "22_AYAR", Name: YirmiIkiAyar},
}

var byCode = func() map[string]string {
	m := make(map[string]string, len(Categories))
	for _, c := range Categories {
		m[c.Code] = c.Name
	}
	return m
}()

// CategoryName returns the category name for a vendor code.
func CategoryName(code string) (string, bool) {
	name, ok := byCode[code]
	return name, ok
}

// CategoryNames returns every category name in table order.
func CategoryNames() []string {
	names := make([]string, len(Categories))
	for i, c := range Categories {
		names[i] = c.Name
	}
	return names
}

var nameSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Categories))
	for _, c := range Categories {
		m[c.Name] = struct{}{}
	}
	return m
}()

// CategoryNameSet returns the set of category names. Callers must not modify it.
func CategoryNameSet() map[string]struct{} {
	return nameSet
}
