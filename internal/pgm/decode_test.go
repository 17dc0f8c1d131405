package pgm

import (
	"bytes"
	"errors"
	"testing"

	"github.com/danmuck/pgmctl/internal/testutil/testlog"
	"github.com/google/go-cmp/cmp"
)

func TestDecodeSingleFrame(t *testing.T) {
	testlog.Start(t)
	payload := patternBytes(100, 0x80)
	stream := append([]byte("P5 10 10 255\n"), payload...)

	out, err := Decode(bytes.NewReader(stream))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Frames) != 1 {
		t.Fatalf("expected one frame, got %d", len(out.Frames))
	}
	f := out.Frames[0]
	if f.Rows != 10 || f.Cols != 10 || f.SampleWidth != 1 {
		t.Fatalf("unexpected geometry: %+v", f)
	}
	if !bytes.Equal(f.Pix, payload) {
		t.Fatalf("payload mismatch")
	}
}

func TestDecodeCommentsAndMultipleFrames(t *testing.T) {
	testlog.Start(t)
	var stream bytes.Buffer
	stream.WriteString("P5\n#alpha\n2 3\n#beta\n255\n#gamma\n")
	for i := 0; i < 4; i++ {
		stream.Write(patternBytes(6, byte(i)))
	}
	out, err := Decode(&stream)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff([]string{"alpha", "beta", "gamma"}, out.Comments); diff != "" {
		t.Fatalf("comments mismatch (-want +got):\n%s", diff)
	}
	if len(out.Frames) != 4 {
		t.Fatalf("expected 4 frames, got %d", len(out.Frames))
	}
	if out.Frames[0].Rows != 3 || out.Frames[0].Cols != 2 {
		t.Fatalf("rows must come from height and cols from width: %+v", out.Frames[0])
	}
}

func TestDecodeSixteenBitFrames(t *testing.T) {
	testlog.Start(t)
	stream := append([]byte("P5 2 2 65535 "), patternBytes(16, 0)...)
	out, err := Decode(bytes.NewReader(stream))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Frames) != 2 || out.Frames[0].SampleWidth != 2 {
		t.Fatalf("unexpected frames: %d width=%d", len(out.Frames), out.Frames[0].SampleWidth)
	}
}

func TestDecodeHeaderOnly(t *testing.T) {
	testlog.Start(t)
	out, err := Decode(bytes.NewReader([]byte("P5 4 4 255\n")))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Frames) != 0 {
		t.Fatalf("expected empty frame sequence, got %d", len(out.Frames))
	}
}

func TestDecodePartialFrameReturnsAcceptedFrames(t *testing.T) {
	testlog.Start(t)
	stream := append([]byte("P5 3 3 255\n"), patternBytes(9*2+4, 0)...)
	out, err := Decode(bytes.NewReader(stream))
	if !errors.Is(err, ErrBadDataContent) {
		t.Fatalf("expected ErrBadDataContent, got %v", err)
	}
	if out == nil || len(out.Frames) != 2 {
		t.Fatalf("expected partial result with 2 frames, got %+v", out)
	}
	if out.Header.Width != 3 {
		t.Fatalf("partial result must carry the header: %+v", out.Header)
	}
}

func TestDecodeHeaderFailureReturnsNothing(t *testing.T) {
	testlog.Start(t)
	out, err := Decode(bytes.NewReader([]byte("X5 10 10 255\n")))
	if !errors.Is(err, ErrBadFormatString) {
		t.Fatalf("expected ErrBadFormatString, got %v", err)
	}
	if out != nil {
		t.Fatalf("header failure must not return a result")
	}
}

func TestDecodeWithLimitsRejectsLargeFrames(t *testing.T) {
	testlog.Start(t)
	out, err := DecodeWithLimits(bytes.NewReader([]byte("P5 100 100 255\n")), Limits{MaxFrameBytes: 512})
	if !errors.Is(err, ErrBadNumericValue) {
		t.Fatalf("expected ErrBadNumericValue, got %v", err)
	}
	if out == nil || len(out.Frames) != 0 {
		t.Fatalf("expected header-only result, got %+v", out)
	}
}

func TestKindLabels(t *testing.T) {
	testlog.Start(t)
	cases := map[error]string{
		nil:                 "",
		ErrBadFormatString:  "bad_format",
		ErrBadNumericValue:  "bad_numeric",
		ErrBadCommentString: "bad_comment",
		ErrBadDataContent:   "bad_data",
		ErrIO:               "io",
		errors.New("other"): "unknown",
	}
	for err, want := range cases {
		if got := Kind(err); got != want {
			t.Fatalf("Kind(%v) = %q want %q", err, got, want)
		}
	}
}
