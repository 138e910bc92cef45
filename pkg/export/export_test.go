package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/travel-console/pkg/table"
)

type booking struct {
	Ref   string
	Guest string
}

func bookings(rows ...booking) table.View {
	cols := []table.Column[booking]{
		table.Text("ref", "Reference", func(b booking) string { return b.Ref }),
		table.Text("guest", "Guest", func(b booking) string { return b.Guest }),
	}
	return table.New(cols, rows).Render()
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)
	assert.Equal(t, "application/pdf", f.ContentType())

	_, err = ParseFormat("xlsx")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestFilename(t *testing.T) {
	at := time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, "contracts_20250102_150405.csv", FormatCSV.Filename("contracts", at))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, bookings(booking{"BK-1", "Ayu"}, booking{"BK-2", "Budi, Jr."}))
	require.NoError(t, err)
	assert.Equal(t, "Reference,Guest\nBK-1,Ayu\nBK-2,\"Budi, Jr.\"\n", buf.String())
}

func TestWriteCSV_SkipsPlaceholderRows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, bookings()))
	assert.Equal(t, "Reference,Guest\n", buf.String())

	cols := []table.Column[booking]{table.Text("ref", "Reference", func(b booking) string { return b.Ref })}
	loading := table.New(cols, nil)
	loading.Loading = true

	buf.Reset()
	require.NoError(t, WriteCSV(&buf, loading.Render()))
	assert.Equal(t, "Reference\n", buf.String())
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, FormatPDF, "Bookings", bookings(booking{"BK-1", "Ayu"}))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestWritePDF_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, "Bookings", bookings()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestWrite_Unsupported(t *testing.T) {
	assert.ErrorIs(t, Write(&bytes.Buffer{}, Format("xml"), "", bookings()), ErrUnsupportedFormat)
}
