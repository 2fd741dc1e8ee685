package validation

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/wheelfolio/backend/src/logger"
)

func init() {
	logger.L = slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestValidateClientContentType(t *testing.T) {
	assert.NoError(t, ValidateClientContentType("text/xml"))
	assert.NoError(t, ValidateClientContentType("application/json"))
	assert.NoError(t, ValidateClientContentType("Application/XML; charset=utf-8"))

	assert.Error(t, ValidateClientContentType("application/pdf"))
	assert.Error(t, ValidateClientContentType("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"))
	assert.Error(t, ValidateClientContentType(""))
}

func TestValidateFileContent_AcceptsXML(t *testing.T) {
	content := `<?xml version="1.0"?><FlexQueryResponse><TradeConfirm symbol="AAPL"/></FlexQueryResponse>`
	reader := bytes.NewReader([]byte(content))

	detected, err := ValidateFileContentByMagicBytes(reader)
	require.NoError(t, err)
	assert.Equal(t, "text/xml", detected)

	// The reader must be rewound so the parser sees the full document.
	rest, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, content, string(rest))
}

func TestValidateFileContent_AcceptsJSON(t *testing.T) {
	content := `{"exportVersion": "1.0", "assignments": []}`
	reader := bytes.NewReader([]byte(content))

	_, err := ValidateFileContentByMagicBytes(reader)
	assert.NoError(t, err)
}

func TestValidateFileContent_RejectsBinary(t *testing.T) {
	reader := bytes.NewReader([]byte{0x7f, 'E', 'L', 'F', 0x00, 0x01, 0x02})

	_, err := ValidateFileContentByMagicBytes(reader)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "binary")
}

func TestValidateFileContent_RejectsEmpty(t *testing.T) {
	_, err := ValidateFileContentByMagicBytes(bytes.NewReader(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestValidateFileContent_RejectsNil(t *testing.T) {
	_, err := ValidateFileContentByMagicBytes(nil)
	assert.Error(t, err)
}

func TestValidateFileContent_LargeDocumentOnlySniffsPrefix(t *testing.T) {
	content := `<?xml version="1.0"?><root>` + strings.Repeat("<TradeConfirm/>", 5000) + `</root>`
	reader := bytes.NewReader([]byte(content))

	_, err := ValidateFileContentByMagicBytes(reader)
	require.NoError(t, err)

	rest, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Len(t, rest, len(content))
}
