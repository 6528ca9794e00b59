package logger

import (
	"testing"

	"log/slog"
)

// The component loggers are package globals consumed by code that also
// runs outside a bootstrapped process. They must never be nil.
func TestComponentLoggersUsableBeforeInit(t *testing.T) {
	loggers := map[string]*slog.Logger{
		"L":          L,
		"DB":         DB,
		"TG":         TG,
		"MIG":        MIG,
		"TWire":      TWire,
		"SEED":       SEED,
		"SVCUsers":   SVCUsers,
		"SVCCatalog": SVCCatalog,
		"SVCCart":    SVCCart,
		"SVCMenu":    SVCMenu,
		"SVCAdmin":   SVCAdmin,
	}
	for name, lg := range loggers {
		if lg == nil {
			t.Fatalf("logger %s is nil before InitLogger", name)
		}
	}

	SVCMenu.LogAttrs(Background(), slog.LevelDebug, "cart.rendered",
		slog.String("event", "menu.cart"),
		slog.Int64("user_id", 7),
	)
}
