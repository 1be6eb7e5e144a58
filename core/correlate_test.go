package core

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/huangsam/covpost/internal/contract"
	"github.com/huangsam/covpost/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counters(pairs ...any) []schema.Counter {
	var out []schema.Counter
	for i := 0; i+2 < len(pairs); i += 3 {
		out = append(out, schema.Counter{
			Type:    pairs[i].(schema.CounterType),
			Covered: pairs[i+1].(float64),
			Missed:  pairs[i+2].(float64),
		})
	}
	return out
}

func TestCorrelateDottedClassName(t *testing.T) {
	report := &schema.Report{Packages: []schema.PackageEntry{{
		Name: "com.x",
		Classes: []schema.ClassEntry{{
			Name:           "com.x.Foo",
			SourceFileName: "Foo.java",
			Counters:       counters(schema.InstructionCounter, 8.0, 2.0),
		}},
	}}}
	paths := DistinctCanonicalPaths([]schema.ChangedFile{ClassifyPath("src/main/java/com/x/Foo.java")})

	files := Correlate(report, paths)
	require.Len(t, files, 1)
	assert.Equal(t, "com/x/Foo.java", files[0].Path)
	assert.Equal(t, "80% (8/10)", files[0].Counters[schema.InstructionCounter].Coverage)
	assert.Equal(t, "0%", files[0].Counters[schema.LineCounter].Coverage)
	assert.Equal(t, "0%", files[0].Counters[schema.MethodCounter].Coverage)
	assert.Len(t, files[0].Counters, len(schema.ChangedFileCounterTypes))
}

func TestCorrelateInnerClassesShareBucket(t *testing.T) {
	report, err := LoadReport("testdata/jacoco.xml")
	require.NoError(t, err)

	files := Correlate(report, []string{"com/x/Foo.java"})
	require.Len(t, files, 1)
	inst := files[0].Counters[schema.InstructionCounter]
	assert.Equal(t, 15.0, inst.Covered)
	assert.Equal(t, 5.0, inst.Missed)
	assert.Equal(t, "75% (15/20)", inst.Coverage)
	_, hasClass := files[0].Counters[schema.ClassCounter]
	assert.False(t, hasClass)
}

func TestCorrelateAbsentFiles(t *testing.T) {
	report, err := LoadReport("testdata/jacoco.xml")
	require.NoError(t, err)

	files := Correlate(report, []string{"com/x/Missing.java", "com/y/Foo.java", "com/x/Bar.kt"})
	require.Len(t, files, 1)
	assert.Equal(t, "com/x/Bar.kt", files[0].Path)
}

func TestCorrelateRequiresDirectoryBoundary(t *testing.T) {
	report := &schema.Report{Packages: []schema.PackageEntry{{
		Classes: []schema.ClassEntry{
			{Name: "com/xy/Foo", SourceFileName: "Foo.java", Counters: counters(schema.LineCounter, 1.0, 0.0)},
			{Name: "Top", SourceFileName: "Top.java", Counters: counters(schema.LineCounter, 2.0, 0.0)},
		},
	}}}
	assert.Empty(t, Correlate(report, []string{"com/x/Foo.java"}))

	files := Correlate(report, []string{"Top.java"})
	require.Len(t, files, 1)
	assert.Equal(t, 2.0, files[0].Counters[schema.LineCounter].Covered)
}

func TestCorrelateOrderIndependent(t *testing.T) {
	report, err := LoadReport("testdata/jacoco.xml")
	require.NoError(t, err)
	paths := []string{"com/x/Foo.java", "com/x/Bar.kt"}
	want := Correlate(report, paths)

	rng := rand.New(rand.NewSource(42))
	for range 10 {
		shuffled := &schema.Report{}
		for _, p := range report.Packages {
			classes := append([]schema.ClassEntry(nil), p.Classes...)
			rng.Shuffle(len(classes), func(i, j int) { classes[i], classes[j] = classes[j], classes[i] })
			shuffled.Packages = append(shuffled.Packages, schema.PackageEntry{Name: p.Name, Classes: classes})
		}
		reversed := []string{paths[1], paths[0]}
		if diff := cmp.Diff(want, Correlate(shuffled, reversed)); diff != "" {
			t.Errorf("Correlate() mismatch after shuffle (-want +got):\n%s", diff)
		}
	}
}

func TestBuildChangedFilesCoverage(t *testing.T) {
	ctx := context.Background()
	report, err := LoadReport("testdata/jacoco.xml")
	require.NoError(t, err)

	t.Run("matches", func(t *testing.T) {
		client := new(contract.MockReviewClient)
		client.On("ListPullRequestFiles", ctx, "u").Return([]string{
			"src/main/java/com/x/Foo.java",
			"src/main/java/com/x/Foo.java",
			"src/main/kotlin/com/x/Bar.kt",
		}, nil)
		files, err := BuildChangedFilesCoverage(ctx, report, client, "u")
		require.NoError(t, err)
		require.Len(t, files, 2)
		assert.Equal(t, "com/x/Bar.kt", files[0].Path)
		assert.Equal(t, "com/x/Foo.java", files[1].Path)
	})

	t.Run("listing failure", func(t *testing.T) {
		client := new(contract.MockReviewClient)
		client.On("ListPullRequestFiles", ctx, "u").Return(nil, errors.New("boom"))
		files, err := BuildChangedFilesCoverage(ctx, report, client, "u")
		require.NoError(t, err)
		assert.Empty(t, files)
	})

	t.Run("nothing recognized", func(t *testing.T) {
		client := new(contract.MockReviewClient)
		client.On("ListPullRequestFiles", ctx, "u").Return([]string{"README.md"}, nil)
		files, err := BuildChangedFilesCoverage(ctx, report, client, "u")
		assert.ErrorIs(t, err, ErrNoChangedFiles)
		assert.Empty(t, files)
	})

	t.Run("no report", func(t *testing.T) {
		client := new(contract.MockReviewClient)
		client.On("ListPullRequestFiles", ctx, "u").Return([]string{"src/main/java/A.java"}, nil)
		_, err := BuildChangedFilesCoverage(ctx, nil, client, "u")
		assert.Error(t, err)
	})
}
