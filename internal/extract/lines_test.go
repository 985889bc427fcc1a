package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/menu-pricer/internal/catalog"
)

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1.234,56", 1234.56},
		{"1234,56", 1234.56},
		{"12,50", 12.50},
		{"12.50", 12.50},
		{"-3,10", -3.10},
		{"1.234.567,89", 1234567.89},
		{"7", 7},
		{" 0,10 ", 0.10},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseLocaleFloat(tc.in)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}

	for _, bad := range []string{"", "abc", "1,2,3"} {
		_, err := ParseDecimal(bad)
		assert.Error(t, err, bad)
	}
}

func TestResolveRate(t *testing.T) {
	meta := catalog.ProductMeta{IVARate: 0.04}
	tests := []struct {
		raw  string
		want float64
	}{
		{"21", 0.21},
		{"10", 0.10},
		{"21,00", 0.21},
		{"0,10", 0.10},
		{"0.21", 0.21},
		{"0", 0.04},
		{"0,00", 0.04},
		{"1", 0.04},
		{"", 0.04},
		{"x", 0.04},
		{"150", 0.04},
	}
	for _, tc := range tests {
		assert.InDelta(t, tc.want, ResolveRate(tc.raw, meta), 1e-9, "raw %q", tc.raw)
	}
	assert.InDelta(t, 0.10, ResolveRate("0", catalog.DefaultMeta), 1e-9)
}

func TestResolvePercent(t *testing.T) {
	meta := catalog.ProductMeta{IVARate: 0.21}
	assert.InDelta(t, 0.10, resolvePercent("10", meta), 1e-9)
	assert.InDelta(t, 0.04, resolvePercent("4", meta), 1e-9)
	assert.InDelta(t, 0.01, resolvePercent("1", meta), 1e-9)
	assert.InDelta(t, 0.21, resolvePercent("0", meta), 1e-9)
}

func TestMultipliers(t *testing.T) {
	n, ok := UnitsPerCase("CROISSANT MINI (24 u)")
	assert.True(t, ok)
	assert.EqualValues(t, 24, n)

	n, ok = UnitsPerCase("NAPOLITANA (12U)")
	assert.True(t, ok)
	assert.EqualValues(t, 12, n)

	_, ok = UnitsPerCase("BAGUETTE 250G")
	assert.False(t, ok)

	n, ok = CaseCode("agua mineral c24")
	assert.True(t, ok)
	assert.EqualValues(t, 24, n)

	_, ok = CaseCode("AGUA 1,5L")
	assert.False(t, ok)
	_, ok = CaseCode("HIELO C0")
	assert.False(t, ok)
}

func TestFold(t *testing.T) {
	assert.Equal(t, "ALBARAN 12", Fold("Albarán 12"))
	assert.Equal(t, "CAFE CON LECHE", Fold("café con leche"))
	assert.True(t, hasMarker("dto. Descuento", "DESCUENTO"))
	assert.False(t, hasMarker("DESC. 5%", "DESCUENTO"))
}

func TestNormSpace(t *testing.T) {
	assert.Equal(t, "PAN BRIOCHE (6 u)", NormSpace("  PAN \t BRIOCHE   (6 u) "))
}

func TestResolveDate(t *testing.T) {
	now := time.Date(2024, 11, 5, 23, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		text string
		want string
	}{
		{"four digit year", "Fecha: 12/03/2024", "2024-03-12"},
		{"two digit year", "fecha 1/7/25", "2025-07-01"},
		{"first match wins", "03/01/2024 vto 03/02/2024", "2024-01-03"},
		{"impossible date skipped", "31/02/2024 y 28/02/2024", "2024-02-28"},
		{"month out of range", "12/13/2024", "2024-11-05"},
		{"three digit year ignored", "12/03/202", "2024-11-05"},
		{"no date", "sin fecha", "2024-11-05"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ResolveDate(tc.text, now))
		})
	}
}

func TestEuropastry_ParseLine(t *testing.T) {
	cat := testCatalog()

	pl, err := Europastry{}.ParseLine("B700 CROISSANT MINI (24 u) 3 9,60 28,80 10", cat)
	require.NoError(t, err)
	assert.Equal(t, 72.0, pl.Qty)
	assert.Equal(t, "ud", pl.Unit)

	pl, err = Europastry{}.ParseLine("B701 BRIOCHE BARRA 4 3,00 12,00 0", cat)
	require.NoError(t, err)
	assert.Equal(t, 4.0, pl.Qty)
	assert.Equal(t, "caja", pl.Unit, "catalog unit without a case hint")
	assert.InDelta(t, 0.10, pl.IVARate, 1e-9, "zero rate falls back to the catalog")

	pl, err = Europastry{}.ParseLine("B702 MAGDALENA 2 1.050,00 2.100,00 0", cat)
	require.NoError(t, err)
	assert.InDelta(t, 2100.0, pl.TotalCostGross, 1e-9)
	assert.InDelta(t, 0.10, pl.IVARate, 1e-9, "no rule falls back to the default rate")

	pl, err = Europastry{}.ParseLine("B703 PAN BRIOCHE (6 u) -2 2,50 -5,00 10", cat)
	require.NoError(t, err)
	assert.Equal(t, -12.0, pl.Qty)
	assert.InDelta(t, -5.0, pl.TotalCostGross, 1e-9)

	_, err = Europastry{}.ParseLine("TOTAL BASE IMPONIBLE 28,80", cat)
	assert.ErrorIs(t, err, ErrNoMatch)

	assert.Equal(t, "4455", Europastry{}.InvoiceNumber("Albaran NUM. 4455"))
	assert.Equal(t, "", Europastry{}.InvoiceNumber("sin numero"))
}

func TestDeca_ParseLine(t *testing.T) {
	pl, err := Deca{}.ParseLine("  100300 TOMATE PERA 1 -4,200 1,20 4 -5,04", testCatalog())
	require.NoError(t, err)
	assert.Equal(t, "TOMATE PERA", pl.Ingredient)
	assert.InDelta(t, -4.2, pl.Qty, 1e-9)
	assert.Equal(t, "kg", pl.Unit)
	assert.InDelta(t, -5.04, pl.TotalCostGross, 1e-9)
	assert.InDelta(t, 0.04, pl.IVARate, 1e-9)
	assert.Equal(t, "cajas:1", pl.Notes)

	pl, err = Deca{}.ParseLine("100301 CERVEZA ARTESANA 2 1,000 3,00 1 3,00", testCatalog())
	require.NoError(t, err)
	assert.InDelta(t, 0.21, pl.IVARate, 1e-9, "implausible rate falls back to the catalog")

	assert.Equal(t, "2024/118", Deca{}.InvoiceNumber("FACTURA Nº: 2024/118"))
}

func TestPerymuz_ParseLine(t *testing.T) {
	cat := testCatalog()

	pl, err := Perymuz{}.ParseLine("R10 REFRESCO LIMON C24 2 6,00 12,00 10,00", cat)
	require.NoError(t, err)
	assert.Equal(t, 48.0, pl.Qty)
	assert.Equal(t, "ud", pl.Unit)
	assert.InDelta(t, 0.10, pl.IVARate, 1e-9)

	pl, err = Perymuz{}.ParseLine("R11 CERVEZA TERCIO C24 -1 14,00 -14,00 0,21", cat)
	require.NoError(t, err)
	assert.Equal(t, -24.0, pl.Qty)
	assert.InDelta(t, -14.0, pl.TotalCostGross, 1e-9)
	assert.InDelta(t, 0.21, pl.IVARate, 1e-9)

	_, err = Perymuz{}.ParseLine("R12 DESCUENTO CERVEZA 1 1,00 -1,00 21", cat)
	assert.ErrorIs(t, err, ErrSkipped)
	_, err = Perymuz{}.ParseLine("Segun ALBARÁN 5521 de fecha 2 1,00 1,00 21", cat)
	assert.ErrorIs(t, err, ErrSkipped)
}

func TestCocaCola_ParseLine(t *testing.T) {
	cat := testCatalog()

	pl, err := CocaCola{}.ParseLine("5449000000996 1234 COCA-COLA LATA 33CL C24 2 12,35 24,70 10", cat)
	require.NoError(t, err)
	assert.Equal(t, "COCA-COLA LATA 33CL C24", pl.Ingredient)
	assert.Equal(t, 48.0, pl.Qty)
	assert.InDelta(t, 24.70, pl.TotalCostGross, 1e-9)
	assert.InDelta(t, 0.10, pl.IVARate, 1e-9)
	assert.Empty(t, pl.Notes)

	pl, err = CocaCola{}.ParseLine("5449000000996 1235 NESTEA 1,5L 3 1,33 3,99 21", cat)
	require.NoError(t, err)
	assert.Equal(t, 3.0, pl.Qty)
	assert.Equal(t, 3.99, pl.TotalCostGross)
	assert.InDelta(t, 0.21, pl.IVARate, 1e-9)

	_, err = CocaCola{}.ParseLine("5449000000996 1234 COCA-COLA 2 12,35 24,70 4", cat)
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestLlinares_ParseLine(t *testing.T) {
	pl, err := Llinares{}.ParseLine("200145 TOMATE RAMA 2 0 10,50 1,150 4 12,08", testCatalog())
	require.NoError(t, err)
	assert.InDelta(t, 10.5, pl.Qty, 1e-9)
	assert.Equal(t, "kg", pl.Unit)
	assert.InDelta(t, 12.08, pl.TotalCostGross, 1e-9)
	assert.InDelta(t, 0.04, pl.IVARate, 1e-9)
	assert.Equal(t, "cajas:2", pl.Notes)

	_, err = Llinares{}.ParseLine("12345 TOMATE RAMA 2 0 10,50 1,150 4 12,08", testCatalog())
	assert.ErrorIs(t, err, ErrNoMatch, "codes are at least six digits")
}

func TestGeneric_ParseLine(t *testing.T) {
	pl, err := Generic{}.ParseLine("Devolucion envases varios -3,00 10", nil)
	require.NoError(t, err)
	assert.InDelta(t, -3.0, pl.TotalCostGross, 1e-9)
	assert.InDelta(t, 0.10, pl.IVARate, 1e-9)

	_, err = Generic{}.ParseLine("CORTO 12,34 21", nil)
	assert.ErrorIs(t, err, ErrNoMatch)
	_, err = Generic{}.ParseLine("PRODUCTO VARIOS ABC 12,34 7", nil)
	assert.ErrorIs(t, err, ErrNoMatch)
}
