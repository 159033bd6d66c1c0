package requirements

import (
	"strings"
	"testing"

	"github.com/aiforge-platform/aiforge-backend/pkg/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mergedLines(t *testing.T, framework entities.Framework, user string) []string {
	t.Helper()
	merged := Merge(framework, user)
	require.True(t, strings.HasSuffix(merged, "\n"))
	return strings.Split(strings.TrimSuffix(merged, "\n"), "\n")
}

func TestMergeIncludesBaseAndFrameworkDefaults(t *testing.T) {
	lines := mergedLines(t, entities.FrameworkPytorch, "")

	assert.Contains(t, lines, "fastapi==0.109.2")
	assert.Contains(t, lines, "uvicorn[standard]==0.27.1")
	assert.Contains(t, lines, "torch==2.1.2")
	assert.Contains(t, lines, "torchvision==0.16.2")
	assert.NotContains(t, strings.Join(lines, "\n"), "scikit-learn")
}

func TestMergeUserPinOverridesBase(t *testing.T) {
	lines := mergedLines(t, entities.FrameworkSklearn, "numpy==1.26.0")

	var numpyLines []string
	for _, line := range lines {
		if strings.HasPrefix(strings.ToLower(line), "numpy") {
			numpyLines = append(numpyLines, line)
		}
	}
	require.Len(t, numpyLines, 1)
	assert.Equal(t, "numpy==1.26.0", numpyLines[0])
}

func TestMergeUserPinOverridesFrameworkDefault(t *testing.T) {
	merged := Merge(entities.FrameworkPytorch, "torch==2.2.0")

	assert.Contains(t, merged, "torch==2.2.0\n")
	assert.NotContains(t, merged, "torch==2.1.2")
}

func TestMergeIsIdempotent(t *testing.T) {
	user := "numpy==1.26.0\nrequests>=2.31\n--extra-index-url https://pypi.example.com/simple"

	once := Merge(entities.FrameworkPytorch, user)
	twice := Merge(entities.FrameworkPytorch, once)

	assert.Equal(t, once, twice)
}

func TestMergeKeepsFlagLinesVerbatim(t *testing.T) {
	user := "--index-url https://pypi.example.com/simple\nmypkg==1.0.0\n--index-url https://pypi.example.com/simple"

	merged := Merge(entities.FrameworkCustom, user)

	assert.Equal(t, 1, strings.Count(merged, "--index-url https://pypi.example.com/simple"))
	assert.Contains(t, merged, "mypkg==1.0.0\n")
}

func TestMergeSkipsCommentsAndBlankLines(t *testing.T) {
	user := "# pinned for reproducibility\n\nmypkg==1.0.0\n"

	merged := Merge(entities.FrameworkCustom, user)

	assert.NotContains(t, merged, "#")
	assert.Contains(t, merged, "mypkg==1.0.0\n")
}

func TestMergeDeduplicatesCaseInsensitively(t *testing.T) {
	lines := mergedLines(t, entities.FrameworkCustom, "Numpy==1.26.0")

	count := 0
	for _, line := range lines {
		if strings.HasPrefix(strings.ToLower(line), "numpy") {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestMergeUnknownFrameworkFallsBackToSklearn(t *testing.T) {
	merged := Merge(entities.Framework("mystery"), "")

	assert.Contains(t, merged, "scikit-learn==1.3.2")
}

func TestMergePreservesFirstSeenOrder(t *testing.T) {
	lines := mergedLines(t, entities.FrameworkSklearn, "zzz-last==1.0.0")

	assert.Equal(t, "fastapi==0.109.2", lines[0])
	assert.Equal(t, "zzz-last==1.0.0", lines[len(lines)-1])
}

func TestBaseReturnsOneRequirementPerLine(t *testing.T) {
	base := Base()

	require.NotEmpty(t, base)
	for _, line := range base {
		assert.NotContains(t, line, "\n")
		assert.NotEmpty(t, strings.TrimSpace(line))
	}
	assert.Contains(t, base, "fastapi==0.109.2")
}
