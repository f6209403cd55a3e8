package publish

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andywolf/swarmctl/internal/errkind"
	"github.com/andywolf/swarmctl/internal/logging"
	"github.com/andywolf/swarmctl/internal/manifest"
	"github.com/andywolf/swarmctl/internal/repotest"
	"github.com/andywolf/swarmctl/internal/skills"
	"github.com/andywolf/swarmctl/internal/treehash"
)

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newPublisher(t *testing.T, repo *repotest.Repo, opts ...Option) *Publisher {
	t.Helper()
	opts = append([]Option{
		WithClock(func() time.Time { return fixedTime }),
		WithIDGenerator(func() string { return "publish-1" }),
	}, opts...)
	p, err := New(repo.Layout, opts...)
	require.NoError(t, err)
	return p
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	children, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, len(children))
	for i, c := range children {
		names[i] = c.Name()
	}
	return names
}

func TestPublish_AlphaBeta(t *testing.T) {
	repo := repotest.New(t)
	repo.AddSkill("alpha", map[string]string{"scripts/run.sh": "echo alpha\n"})
	repo.AddSkill("beta", nil)
	repo.Declare("`configs/skills/alpha`", "configs/skills/beta")

	m, err := newPublisher(t, repo).PublishDeclared()
	require.NoError(t, err)

	dest := repo.Layout.Destination
	assert.ElementsMatch(t, []string{"alpha", "beta", manifest.FileName}, listDir(t, dest))
	assert.FileExists(t, filepath.Join(dest, "alpha", "scripts", "run.sh"))

	require.Len(t, m.Skills, 2)
	assert.Equal(t, []string{"alpha", "beta"}, m.Names())
	assert.Equal(t, manifest.Version, m.Version)
	assert.Equal(t, "2026-03-01T12:00:00Z", m.GeneratedAt)
	assert.Equal(t, "publish-1", m.PublishID)
	assert.Equal(t, "configs/skills/ACTIVE_SKILLS.md", m.Declaration)

	alpha := m.Skills[0]
	assert.Equal(t, "configs/skills/alpha", alpha.Source)
	assert.Equal(t, ".agent/skills/alpha", alpha.Dest)

	for _, entry := range m.Skills {
		rehash, err := treehash.Default().Tree(filepath.Join(dest, entry.Name))
		require.NoError(t, err)
		assert.Equal(t, rehash, entry.TreeDigest, entry.Name)

		source, err := treehash.Default().Tree(repo.Path(entry.Source))
		require.NoError(t, err)
		assert.Equal(t, source, entry.TreeDigest, "copy hashes like its source")
	}

	saved, err := manifest.Load(repo.Layout.Manifest)
	require.NoError(t, err)
	assert.True(t, manifest.Equivalent(m, saved))
}

func TestPublish_MissingSkillLeavesFreshDestinationAbsent(t *testing.T) {
	repo := repotest.New(t)
	repo.AddSkill("alpha", nil)
	repo.Declare("configs/skills/alpha", "configs/skills/ghost")

	_, err := newPublisher(t, repo).PublishDeclared()
	require.Error(t, err)
	assert.True(t, errkind.Is(err, errkind.NotFound))
	assert.Contains(t, err.Error(), "ghost")

	_, statErr := os.Stat(repo.Layout.Destination)
	assert.True(t, os.IsNotExist(statErr), "destination must not be created")
}

func TestPublish_MissingSkillLeavesExistingDestinationUnchanged(t *testing.T) {
	repo := repotest.New(t)
	repo.AddSkill("alpha", nil)
	repo.Declare("configs/skills/alpha")
	_, err := newPublisher(t, repo).PublishDeclared()
	require.NoError(t, err)

	before, err := treehash.Default().Tree(repo.Layout.Destination)
	require.NoError(t, err)

	repo.Declare("configs/skills/alpha", "configs/skills/ghost")
	_, err = newPublisher(t, repo).PublishDeclared()
	require.Error(t, err)

	after, err := treehash.Default().Tree(repo.Layout.Destination)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestPublish_MissingMarker(t *testing.T) {
	repo := repotest.New(t)
	repo.Write("configs/skills/bare/notes.md", "no marker\n")
	repo.Declare("configs/skills/bare")

	_, err := newPublisher(t, repo).PublishDeclared()
	require.Error(t, err)
	assert.True(t, errkind.Is(err, errkind.NotFound))
	assert.Contains(t, err.Error(), "missing SKILL.md")
}

func TestPublish_RemovesStaleKeepsSentinels(t *testing.T) {
	repo := repotest.New(t)
	repo.AddSkill("alpha", nil)
	repo.Declare("configs/skills/alpha")
	repo.Write(".agent/skills/.gitkeep", "")
	repo.Write(".agent/skills/retired/SKILL.md", "old\n")
	repo.Write(".agent/skills/stray.txt", "old\n")

	_, err := newPublisher(t, repo).PublishDeclared()
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{".gitkeep", "alpha", manifest.FileName}, listDir(t, repo.Layout.Destination))
}

func TestPublish_RepublishReplacesContent(t *testing.T) {
	repo := repotest.New(t)
	dir := repo.AddSkill("alpha", map[string]string{"old.txt": "old\n"})
	repo.Declare("configs/skills/alpha")

	first, err := newPublisher(t, repo).PublishDeclared()
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(dir, "old.txt")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.txt"), []byte("new\n"), 0o644))

	second, err := newPublisher(t, repo).PublishDeclared()
	require.NoError(t, err)

	assert.NoFileExists(t, filepath.Join(repo.Layout.Destination, "alpha", "old.txt"))
	assert.FileExists(t, filepath.Join(repo.Layout.Destination, "alpha", "new.txt"))
	assert.NotEqual(t, first.Skills[0].TreeDigest, second.Skills[0].TreeDigest)
}

func TestPublish_FollowsSymlinks(t *testing.T) {
	repo := repotest.New(t)
	dir := repo.AddSkill("alpha", nil)
	repo.Write("shared/lib/helper.py", "print('hi')\n")
	if err := os.Symlink(repo.Path("shared/lib"), filepath.Join(dir, "lib")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	require.NoError(t, os.Symlink(filepath.Join(dir, "missing"), filepath.Join(dir, "dangling")))
	repo.Declare("configs/skills/alpha")

	_, err := newPublisher(t, repo).PublishDeclared()
	require.NoError(t, err)

	copied := filepath.Join(repo.Layout.Destination, "alpha", "lib", "helper.py")
	info, err := os.Lstat(copied)
	require.NoError(t, err)
	assert.True(t, info.Mode().IsRegular(), "linked content is materialized")
	assert.NoFileExists(t, filepath.Join(repo.Layout.Destination, "alpha", "dangling"))
}

func TestPublish_SymlinkCycle(t *testing.T) {
	repo := repotest.New(t)
	dir := repo.AddSkill("alpha", nil)
	if err := os.Symlink(dir, filepath.Join(dir, "self")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	repo.Declare("configs/skills/alpha")

	_, err := newPublisher(t, repo).PublishDeclared()
	require.Error(t, err)
	assert.True(t, errkind.Is(err, errkind.IO))
	assert.Contains(t, err.Error(), "symlink cycle")
}

func TestPublish_EmptySpecs(t *testing.T) {
	repo := repotest.New(t)
	_, err := newPublisher(t, repo).Publish(nil)
	require.Error(t, err)
	assert.True(t, errkind.Is(err, errkind.NotFound))
}

func TestPublish_ReservedName(t *testing.T) {
	repo := repotest.New(t)
	dir := repo.AddSkill(".gitkeep", nil)

	_, err := newPublisher(t, repo).Publish([]skills.Spec{{Name: ".gitkeep", Source: dir}})
	require.Error(t, err)
	assert.True(t, errkind.Is(err, errkind.Shape))
}

func TestPublish_ExcludedArtifactsDoNotAffectDigest(t *testing.T) {
	repo := repotest.New(t)
	repo.AddSkill("alpha", nil)
	repo.Declare("configs/skills/alpha")

	clean, err := newPublisher(t, repo).PublishDeclared()
	require.NoError(t, err)

	repo.Write("configs/skills/alpha/__pycache__/mod.cpython-312.pyc", "\x00\x01")
	dirty, err := newPublisher(t, repo).PublishDeclared()
	require.NoError(t, err)

	assert.Equal(t, clean.Skills[0].TreeDigest, dirty.Skills[0].TreeDigest)
}

func TestPublish_Logs(t *testing.T) {
	repo := repotest.New(t)
	repo.AddSkill("alpha", nil)
	repo.Declare("configs/skills/alpha")

	var buf bytes.Buffer
	_, err := newPublisher(t, repo, WithLogger(logging.New(&buf, slog.LevelInfo))).PublishDeclared()
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "published skill")
	assert.Contains(t, buf.String(), "name=alpha")
}

func TestNew_InvalidExclude(t *testing.T) {
	repo := repotest.New(t)
	layout := repo.Layout
	layout.Exclude = []string{"[bad"}

	_, err := New(layout)
	require.Error(t, err)
}
