package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/umkm-stats-api/internal/domain/entity"
	"github.com/jhoicas/umkm-stats-api/internal/domain/repository"
)

// Querier lo que el repositorio necesita de *pgxpool.Pool (o de una pgx.Tx).
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

var _ repository.SalesRepository = (*SalesRepo)(nil)

// SalesRepo lectura de ventas sobre las tablas del registro comercial UMKM.
type SalesRepo struct {
	db Querier
}

// NewSalesRepository construye el adaptador de ventas.
func NewSalesRepository(db Querier) *SalesRepo {
	return &SalesRepo{db: db}
}

// La lokasi de venta es opcional (ON DELETE SET NULL) y su región también; de ahí los LEFT JOIN.
const saleLinesSelect = `
	SELECT
	    pt.id::TEXT,
	    pt.produk_id::TEXT,
	    COALESCE(pt.lokasi_penjualan_id::TEXT, ''),
	    pt.tgl_penjualan,
	    pt.jumlah_terjual,
	    pt.harga_jual::NUMERIC,
	    pt.total_penjualan::NUMERIC,
	    COALESCE(pt.catatan, ''),
	    pt.tgl_pelaporan,
	    p.umkm_id::TEXT,
	    COALESCE(kp.nm_kategori, ''),
	    p.nm_produk,
	    COALESCE(p.satuan, ''),
	    p.biaya_upah::NUMERIC,
	    p.biaya_produksi::NUMERIC,
	    COALESCE(NULLIF(pu.nm_bisnis, ''), u.username, ''),
	    COALESCE(lp.nm_lokasi, ''),
	    COALESCE(lp.alamat, ''),
	    COALESCE(kl.nm_kategori_lokasi, ''),
	    COALESCE(kec.nm_kecamatan, ''),
	    COALESCE(kab.nm_kabupaten, ''),
	    COALESCE(prov.nm_provinsi, '')
	FROM produk_terjual pt
	JOIN produk p                    ON p.id    = pt.produk_id
	LEFT JOIN kategori_produk kp     ON kp.id   = p.kategori_id
	LEFT JOIN authentication_user u  ON u.id    = p.umkm_id
	LEFT JOIN profil_umkm pu         ON pu.user_id = p.umkm_id
	LEFT JOIN lokasi_penjualan lp    ON lp.id   = pt.lokasi_penjualan_id
	LEFT JOIN kategori_lokasi kl     ON kl.id   = lp.kategori_lokasi_id
	LEFT JOIN kecamatan kec          ON kec.id  = lp.kecamatan_id
	LEFT JOIN kabupaten kab          ON kab.id  = kec.kabupaten_id
	LEFT JOIN provinsi prov          ON prov.id = kab.provinsi_id`

// ListSaleLines devuelve las ventas del filtro ordenadas por fecha e id.
func (r *SalesRepo) ListSaleLines(ctx context.Context, f repository.SalesFilter) ([]entity.SaleLine, error) {
	where, args := buildSalesWhere(f)
	query := saleLinesSelect + where + "\n\tORDER BY pt.tgl_penjualan, pt.id"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapQueryErr("sales.ListSaleLines", err)
	}
	defer rows.Close()

	var lines []entity.SaleLine
	for rows.Next() {
		var (
			l        entity.SaleLine
			labor    decimal.NullDecimal
			prodCost decimal.NullDecimal
			loc      entity.Location
		)
		if err := rows.Scan(
			&l.ID,
			&l.ProductID,
			&l.LocationID,
			&l.SaleDate,
			&l.Quantity,
			&l.UnitPrice,
			&l.TotalAmount,
			&l.Note,
			&l.ReportedAt,
			&l.Product.SellerID,
			&l.Product.CategoryName,
			&l.Product.Name,
			&l.Product.Unit,
			&labor,
			&prodCost,
			&l.SellerName,
			&loc.Name,
			&loc.Address,
			&loc.Category,
			&loc.District,
			&loc.Regency,
			&loc.Province,
		); err != nil {
			return nil, fmt.Errorf("sales.ListSaleLines scan: %w", err)
		}
		l.Product.ID = l.ProductID
		l.Product.LaborCost = labor
		l.Product.ProductionCost = prodCost
		if l.LocationID != "" {
			loc.ID = l.LocationID
			loc.SellerID = l.Product.SellerID
			l.Location = &loc
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryErr("sales.ListSaleLines rows", err)
	}
	return lines, nil
}

// buildSalesWhere traduce el filtro a una cláusula WHERE con placeholders posicionales.
// Cada vendedor es una condición independiente: el AND de dos ids distintos no devuelve filas.
func buildSalesWhere(f repository.SalesFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if !f.Start.IsZero() {
		add("pt.tgl_penjualan >= $%d", f.Start)
	}
	if !f.End.IsZero() {
		add("pt.tgl_penjualan <= $%d", f.End)
	}
	for _, id := range f.SellerIDs {
		add("p.umkm_id = $%d::UUID", id)
	}
	if f.LocationID != "" {
		add("pt.lokasi_penjualan_id = $%d::UUID", f.LocationID)
	}
	if f.ProductID != "" {
		add("pt.produk_id = $%d::UUID", f.ProductID)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "\n\tWHERE " + strings.Join(conds, "\n\t  AND "), args
}
