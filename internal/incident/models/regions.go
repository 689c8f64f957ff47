package models

import "strings"

// Region is one federative entity of the closed 32-entry catalog, with its
// census reference population used for per-100k rates.
type Region struct {
	Code       string
	Name       string
	Population int64
}

// catalog is ordered by code. INEGI 2020 census population figures.
var catalog = []Region{
	{"01", "Aguascalientes", 1425607},
	{"02", "Baja California", 3769020},
	{"03", "Baja California Sur", 798447},
	{"04", "Campeche", 928363},
	{"05", "Coahuila", 3146771},
	{"06", "Colima", 731391},
	{"07", "Chiapas", 5543828},
	{"08", "Chihuahua", 3741869},
	{"09", "Ciudad de México", 9209944},
	{"10", "Durango", 1832650},
	{"11", "Guanajuato", 6166934},
	{"12", "Guerrero", 3540685},
	{"13", "Hidalgo", 3082841},
	{"14", "Jalisco", 8348151},
	{"15", "México", 16992418},
	{"16", "Michoacán", 4748846},
	{"17", "Morelos", 1971520},
	{"18", "Nayarit", 1235456},
	{"19", "Nuevo León", 5784442},
	{"20", "Oaxaca", 4132148},
	{"21", "Puebla", 6583278},
	{"22", "Querétaro", 2368467},
	{"23", "Quintana Roo", 1857985},
	{"24", "San Luis Potosí", 2822255},
	{"25", "Sinaloa", 3026943},
	{"26", "Sonora", 2944840},
	{"27", "Tabasco", 2402598},
	{"28", "Tamaulipas", 3527735},
	{"29", "Tlaxcala", 1342977},
	{"30", "Veracruz", 8062579},
	{"31", "Yucatán", 2320898},
	{"32", "Zacatecas", 1622138},
}

var (
	regionsByCode = make(map[string]Region, len(catalog))
	regionsByName = make(map[string]Region, len(catalog))
)

func init() {
	for _, r := range catalog {
		regionsByCode[r.Code] = r
		regionsByName[strings.ToLower(r.Name)] = r
	}
}

// Regions returns the full catalog in code order. Callers must not mutate
// the returned slice.
func Regions() []Region {
	return catalog
}

// RegionByCode looks a region up by its two-digit code.
func RegionByCode(code string) (Region, bool) {
	r, ok := regionsByCode[code]
	return r, ok
}

// RegionByName looks a region up by name, case-insensitively.
func RegionByName(name string) (Region, bool) {
	r, ok := regionsByName[strings.ToLower(strings.TrimSpace(name))]
	return r, ok
}

// ResolveRegion accepts either a code or a name and resolves it against the
// catalog.
func ResolveRegion(s string) (Region, bool) {
	if r, ok := RegionByCode(strings.TrimSpace(s)); ok {
		return r, true
	}
	return RegionByName(s)
}
