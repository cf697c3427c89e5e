package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// sampleProject is a two class tree with one slot table.
var sampleProject = map[string]string{
	"basic/Object.h": `namespace Eaagles {
namespace Basic {
class Object {
};
}
}`,
	"instruments/Gauge.h": `namespace Eaagles {
namespace Instruments {
class Gauge : public Basic::Object {
};
}
}`,
	"instruments/Gauge.cpp": `namespace Eaagles {
namespace Instruments {
IMPLEMENT_SUBCLASS(Gauge, "gauge")
BEGIN_SLOTTABLE(Gauge)
    "minimum",
    "maximum",
END_SLOTTABLE(Gauge)
BEGIN_SLOT_MAP(Gauge)
    ON_SLOT(1, setMinimum, Basic::Object)
END_SLOT_MAP()
}
}`,
}

// writeProject writes files under a new temp directory and returns it.
func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}
