package services

import (
	"bytes"
	"mime/multipart"
	"testing"

	"agora/internal/db"
	"agora/internal/models"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.OpenInMemory(t.Name())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func newTestStore(t *testing.T, maxBytes int64) *ImageStore {
	t.Helper()
	store, err := NewImageStore(t.TempDir(), maxBytes)
	require.NoError(t, err)
	return store
}

func newTestContent(t *testing.T) (*ContentService, *gorm.DB, *ImageStore) {
	t.Helper()
	gdb := newTestDB(t)
	store := newTestStore(t, 1<<20)
	return NewContentService(gdb, store, zap.NewNop()), gdb, store
}

func mustUser(t *testing.T, gdb *gorm.DB, name string, admin bool) *models.User {
	t.Helper()
	u := models.User{Username: name, Password: "x", IsAdmin: admin}
	require.NoError(t, gdb.Create(&u).Error)
	return &u
}

func mustPost(t *testing.T, gdb *gorm.DB, author *models.User, title, section string, price *float64) *models.Post {
	t.Helper()
	p := models.Post{UserID: author.ID, Title: title, Content: "body of " + title, Section: section, Price: price}
	require.NoError(t, gdb.Create(&p).Error)
	return &p
}

func ptr(v float64) *float64 { return &v }

type upload struct {
	name string
	data []byte
}

// uploads builds real multipart file headers, in order, under the "images" field.
func uploads(t *testing.T, files ...upload) []*multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := w.CreateFormFile("images", f.name)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["images"]
}

func nopLogger() *zap.Logger { return zap.NewNop() }
