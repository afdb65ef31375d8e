package notify

import (
	"os"
	"testing"

	"github.com/saoodchoudhary/RBMEsports-Backend/internal/logger"
)

func TestMain(m *testing.M) {
	logger.Init()

	code := m.Run()
	os.Exit(code)
}
