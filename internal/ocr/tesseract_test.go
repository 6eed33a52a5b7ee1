package ocr

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerylCAtieno/blood-report-api/internal/utils"
)

type fakeRunner struct {
	stdout []byte
	stderr []byte
	err    error
	block  bool

	calls int
	name  string
	args  []string
	stdin []byte
}

func (f *fakeRunner) Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, []byte, error) {
	f.calls++
	f.name = name
	f.args = args
	f.stdin = stdin
	if f.block {
		<-ctx.Done()
		return nil, nil, ctx.Err()
	}
	return f.stdout, f.stderr, f.err
}

func testImage() image.Image {
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		img.Set(x, 4, color.Black)
	}
	return img
}

func TestRecognize_PipesPNGToTesseract(t *testing.T) {
	runner := &fakeRunner{stdout: []byte("Hemoglobin 13.5 g/dL\r\n\f")}
	engine := NewEngineWithRunner(Config{Lang: "eng+fra", PSM: 6, TessdataDir: "/opt/tessdata"}, runner, utils.NewNopLogger())

	text, err := engine.Recognize(context.Background(), testImage())
	require.NoError(t, err)

	assert.Equal(t, "Hemoglobin 13.5 g/dL", text)
	assert.Equal(t, 1, runner.calls)
	assert.Equal(t, "tesseract", runner.name)
	assert.Equal(t, []string{"stdin", "stdout", "-l", "eng+fra", "--psm", "6", "--tessdata-dir", "/opt/tessdata"}, runner.args)

	decoded, err := png.Decode(bytes.NewReader(runner.stdin))
	require.NoError(t, err)
	assert.Equal(t, 8, decoded.Bounds().Dx())
}

func TestRecognize_EmptyOutputIsNotAnError(t *testing.T) {
	engine := NewEngineWithRunner(Config{}, &fakeRunner{stdout: []byte("  \n")}, utils.NewNopLogger())

	text, err := engine.Recognize(context.Background(), testImage())
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestRecognize_CommandFailure(t *testing.T) {
	runner := &fakeRunner{err: errors.New("exit status 1"), stderr: []byte("Error opening data file eng.traineddata")}
	engine := NewEngineWithRunner(Config{}, runner, utils.NewNopLogger())

	_, err := engine.Recognize(context.Background(), testImage())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "eng.traineddata")
}

func TestRecognize_Timeout(t *testing.T) {
	engine := NewEngineWithRunner(Config{Timeout: 20 * time.Millisecond}, &fakeRunner{block: true}, utils.NewNopLogger())

	_, err := engine.Recognize(context.Background(), testImage())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "crlf", in: "a\r\nb\rc", want: "a\nb\nc"},
		{name: "ruled lines", in: "WBC 6.1\n-----------\nRBC 4.8", want: "WBC 6.1\n\nRBC 4.8"},
		{name: "blank runs", in: "a\n\n\n\n\nb", want: "a\n\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}
