package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelanni/classboard/internal/model"
	"github.com/pavelanni/classboard/internal/store"
)

func TestExportDBFlag(t *testing.T) {
	db := exportCmd().Flags().Lookup("db")
	require.NotNil(t, db)
	assert.Equal(t, "classboard.db", db.DefValue)
	assert.Contains(t, db.Usage, "serve --db")
}

func TestLoadLessonImportsOnce(t *testing.T) {
	db, err := store.New(":memory:")
	require.NoError(t, err)
	defer db.Close()

	b, imported, err := loadLesson(db, "", 7, 5)
	require.NoError(t, err)
	assert.True(t, imported)
	assert.NotEmpty(t, b.Lesson.Title)

	_, imported, err = loadLesson(db, "", 7, 5)
	require.NoError(t, err)
	assert.False(t, imported)
}

func TestExportUsesServedDatabase(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "class.db")
	outPath := filepath.Join(dir, "report.json")

	// Seed the file the way serve would, with a class size export would not pick.
	db, err := store.New(dbPath)
	require.NoError(t, err)
	_, _, err = loadLesson(db, "", 7, 5)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	cmd := rootCmd()
	cmd.SetArgs([]string{"export", "--db", dbPath, "--class-size", "30", "-o", outPath})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var rep model.LessonReport
	require.NoError(t, json.Unmarshal(data, &rep))
	assert.Len(t, rep.Students, 5)
	assert.NotEmpty(t, rep.Lesson.Title)
}
