package history

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/merchant-agent/backend-go/internal/domain"
)

func rec(product, date string, units int) domain.SalesRecord {
	d, _ := time.Parse(domain.DateLayout, date)
	return domain.SalesRecord{Date: d, ProductID: product, ProductName: product + "-name", UnitsSold: units, Promotion: 1}
}

func TestNewStoreSortsPerProduct(t *testing.T) {
	s, err := NewStore([]domain.SalesRecord{
		rec("P2", "2024-01-02", 5),
		rec("P1", "2024-01-03", 3),
		rec("P1", "2024-01-01", 1),
		rec("P1", "2024-01-02", 2),
	})
	require.NoError(t, err)

	assert.Equal(t, 4, s.Len())
	assert.Equal(t, []string{"P1", "P2"}, s.ProductIDs())
	assert.Equal(t, []float64{1, 2, 3}, s.Trailing("P1", 30))
	assert.Equal(t, []float64{2, 3}, s.Trailing("P1", 2))
	assert.Empty(t, s.Trailing("P9", 30))

	name, ok := s.ProductName("P2")
	assert.True(t, ok)
	assert.Equal(t, "P2-name", name)
}

func TestNewStoreRejectsInvalidRecords(t *testing.T) {
	_, err := NewStore([]domain.SalesRecord{rec("P1", "2024-01-01", 1), rec("P1", "2024-01-01", 2)})
	assert.ErrorContains(t, err, "duplicate")

	_, err = NewStore([]domain.SalesRecord{rec("P1", "2024-01-01", -1)})
	assert.Error(t, err)

	bad := rec("P1", "2024-01-01", 1)
	bad.Promotion = 0
	_, err = NewStore([]domain.SalesRecord{bad})
	assert.Error(t, err)

	for _, promo := range []float64{math.NaN(), math.Inf(1), -2} {
		bad.Promotion = promo
		_, err = NewStore([]domain.SalesRecord{bad})
		assert.Error(t, err, "promotion %v", promo)
	}
}

func TestDigestTracksContent(t *testing.T) {
	a, err := NewStore([]domain.SalesRecord{rec("P1", "2024-01-01", 1), rec("P2", "2024-01-01", 2)})
	require.NoError(t, err)
	reordered, err := NewStore([]domain.SalesRecord{rec("P2", "2024-01-01", 2), rec("P1", "2024-01-01", 1)})
	require.NoError(t, err)
	changed, err := NewStore([]domain.SalesRecord{rec("P1", "2024-01-01", 1), rec("P2", "2024-01-01", 3)})
	require.NoError(t, err)

	assert.Len(t, a.Digest(), 40)
	assert.Equal(t, a.Digest(), reordered.Digest())
	assert.NotEqual(t, a.Digest(), changed.Digest())
}

func TestNewStoreAcceptsGaps(t *testing.T) {
	s, err := NewStore([]domain.SalesRecord{rec("P1", "2024-01-01", 1), rec("P1", "2024-01-05", 2)})
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())
}

func TestUnitsInMonths(t *testing.T) {
	s, err := NewStore([]domain.SalesRecord{
		rec("P1", "2024-05-31", 10),
		rec("P1", "2024-06-01", 20),
		rec("P1", "2024-09-01", 30),
	})
	require.NoError(t, err)

	assert.Equal(t, []float64{10, 20}, s.UnitsInMonths("P1", domain.SeasonSummer.Months()))
	assert.Empty(t, s.UnitsInMonths("P1", domain.SeasonWinter.Months()))
}

func TestRecordsAreCopies(t *testing.T) {
	s, err := NewStore([]domain.SalesRecord{rec("P1", "2024-01-01", 1)})
	require.NoError(t, err)

	rows := s.Records("P1")
	rows[0].UnitsSold = 999
	assert.Equal(t, 1, s.Records("P1")[0].UnitsSold)
}

func TestRange(t *testing.T) {
	s, err := NewStore([]domain.SalesRecord{rec("P1", "2024-01-03", 1), rec("P2", "2023-12-30", 1)})
	require.NoError(t, err)

	first, last, ok := s.Range()
	require.True(t, ok)
	assert.Equal(t, "2023-12-30", first.Format(domain.DateLayout))
	assert.Equal(t, "2024-01-03", last.Format(domain.DateLayout))
}

func TestCSVRoundTrip(t *testing.T) {
	in := "date,product_id,product_name,sales,promo\n" +
		"2024-01-01,P1,T-Shirt,12,1.0\n" +
		"2024-01-02 00:00:00,P1,T-Shirt,15,1.6\n" +
		"2024-01-01,P2,Jacket,7.0,\n"

	records, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, 15, records[1].UnitsSold)
	assert.Equal(t, 1.6, records[1].Promotion)
	assert.Equal(t, 1.0, records[2].Promotion)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records))

	again, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, records, again)
}

func TestReadCSVErrors(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("day,sku\n"))
	assert.Error(t, err)

	_, err = ReadCSV(strings.NewReader("date,product_id,sales\nnot-a-date,P1,1\n"))
	assert.Error(t, err)

	_, err = ReadCSV(strings.NewReader("date,product_id,sales\n2024-01-01,P1,1.5\n"))
	assert.Error(t, err)

	_, err = ReadCSV(strings.NewReader("date,product_id,sales\n2024-01-01,P1,1e300\n"))
	assert.ErrorContains(t, err, "out of range")

	for _, promo := range []string{"NaN", "+Inf", "0", "-1"} {
		_, err = ReadCSV(strings.NewReader("date,product_id,sales,promo\n2024-01-01,P1,1," + promo + "\n"))
		assert.Error(t, err, "promo %s", promo)
	}
}
