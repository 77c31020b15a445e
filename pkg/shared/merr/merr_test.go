// 指示: miu200521358
package merr

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestExtractErrorIDThroughWrap(t *testing.T) {
	base := NewCommonError(IoParseFailedErrorID, errors.New("broken"), "解析失敗: %s", "a.vrm")
	wrapped := Wrap(base, "読み込み処理")

	if got := ExtractErrorID(wrapped); got != IoParseFailedErrorID {
		t.Fatalf("expected %s, got %s", IoParseFailedErrorID, got)
	}
	if !strings.Contains(wrapped.Error(), "broken") {
		t.Fatalf("cause should be in message: %v", wrapped)
	}
}

func TestExtractErrorIDReturnsEmptyForPlainError(t *testing.T) {
	if got := ExtractErrorID(errors.New("plain")); got != "" {
		t.Fatalf("expected empty id, got %s", got)
	}
	if got := ExtractErrorID(nil); got != "" {
		t.Fatalf("expected empty id for nil, got %s", got)
	}
}

func TestWrapNilReturnsNil(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Fatalf("wrap nil should return nil")
	}
}
