package model

// Location is one bookable butik branch.
type Location struct {
	Code string
	Name string
}

// Locations lists every branch the booking service accepts, in the
// order the original panel presents them.
var Locations = []Location{
	{Code: "JKT-06", Name: "ATGM-Gedung Antam"},
	{Code: "JKT-01", Name: "ATGM-Graha Dipta"},
	{Code: "BPN-01", Name: "Butik Emas LM - Balikpapan"},
	{Code: "BDG-01", Name: "Butik Emas LM - Bandung"},
	{Code: "BKS-01", Name: "Butik Emas LM - Bekasi"},
	{Code: "TGR-01", Name: "Butik Emas LM - Bintaro"},
	{Code: "BGR-01", Name: "Butik Emas LM - Bogor"},
	{Code: "DPS-01", Name: "Butik Emas LM - Denpasar"},
	{Code: "SDA-01", Name: "Butik Emas LM - Djuanda"},
	{Code: "JKT-04", Name: "Butik Emas LM - Gedung Antam"},
	{Code: "JKT-05", Name: "Butik Emas LM - Graha Dipta"},
	{Code: "MKS-01", Name: "Butik Emas LM - Makassar"},
	{Code: "MDN-01", Name: "Butik Emas LM - Medan"},
	{Code: "PLB-01", Name: "Butik Emas LM - Palembang"},
	{Code: "PKU-01", Name: "Butik Emas LM - Pekanbaru"},
	{Code: "JKT-07", Name: "Butik Emas LM - Puri Indah"},
	{Code: "SMR-01", Name: "Butik Emas LM - Semarang"},
	{Code: "TGR-02", Name: "Butik Emas LM - Serpong"},
	{Code: "JKT-08", Name: "Butik Emas LM - Setiabudi One"},
	{Code: "SUB-01", Name: "Butik Emas LM - Surabaya 1 Darmo"},
	{Code: "SUB-02", Name: "Butik Emas LM - Surabaya 2 Pakuwon"},
	{Code: "YOG-01", Name: "Butik Emas LM - Yogyakarta"},
}

// LocationName resolves a branch code to its display name. Unknown
// codes come back unchanged so the UI still shows something useful.
func LocationName(code string) string {
	for _, loc := range Locations {
		if loc.Code == code {
			return loc.Name
		}
	}
	return code
}
