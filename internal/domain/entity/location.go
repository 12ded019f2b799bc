package entity

// Location lokasi de venta de un UMKM (mercado, tienda, feria...).
// Los descriptores regionales pueden venir vacíos si la lokasi no tiene kecamatan asignada.
type Location struct {
	ID       string
	SellerID string
	Name     string
	Address  string
	Category string // kategori lokasi
	District string // kecamatan
	Regency  string // kabupaten
	Province string // provinsi
}
