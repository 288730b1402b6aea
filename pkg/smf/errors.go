package smf

import (
	"errors"
	"fmt"
)

// デコードエラーの分類
var (
	// ErrEndOfData は読み取りがバッファ（またはチャンク）の終端を越えた場合のエラー
	ErrEndOfData = errors.New("end of data")

	// ErrBadChunkTag は期待したチャンクタグ（MThd/MTrk）が見つからない場合のエラー
	ErrBadChunkTag = errors.New("wrong chunk type")

	// ErrMissingStatusByte はランニングステータス未確立のままデータバイトが現れた場合のエラー
	ErrMissingStatusByte = errors.New("missing status byte")

	// ErrInvalidDataByte は0-127のみ許されるバイトが128以上だった場合のエラー
	ErrInvalidDataByte = errors.New("data byte > 127")

	// ErrInvalidHeader はヘッダーチャンクが短すぎる、または分解能が0の場合のエラー
	ErrInvalidHeader = errors.New("invalid header chunk")
)

// DecodeError describes where decoding stopped. Kind is one of the sentinel
// errors above, so errors.Is works on any error returned by Parse or Load.
type DecodeError struct {
	Kind   error
	Chunk  string // "MThd" or "MTrk"
	Track  int    // -1 for the header chunk
	Offset int    // byte offset inside the chunk payload, or inside the file for chunk framing
	Detail string
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	msg := e.Kind.Error()
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.Track >= 0 {
		return fmt.Sprintf("[%s] %s at track %d offset %d", e.Chunk, msg, e.Track, e.Offset)
	}
	return fmt.Sprintf("[%s] %s at offset %d", e.Chunk, msg, e.Offset)
}

// Unwrap returns the sentinel kind.
func (e *DecodeError) Unwrap() error {
	return e.Kind
}

func newDecodeError(kind error, chunk string, track, offset int, format string, args ...any) *DecodeError {
	return &DecodeError{
		Kind:   kind,
		Chunk:  chunk,
		Track:  track,
		Offset: offset,
		Detail: fmt.Sprintf(format, args...),
	}
}
