package service

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/credentia/credentia-api/internal/repository"
)

type fakeStorage struct {
	uploads []string
}

func (f *fakeStorage) Upload(_ context.Context, name string, _ io.Reader) (string, error) {
	f.uploads = append(f.uploads, name)
	return "https://cdn.test/" + name, nil
}

func newUploadServiceForTest(env *engineEnv, storage FileStorage, maxSizeMB int) UploadService {
	repo := repository.NewUploadRepository(env.db)
	return NewUploadService(storage, repo, newCourseService(env), maxSizeMB, zerolog.Nop())
}

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(body, writer.Boundary()).ReadForm(int64(len(content)) + 4096)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	return form.File["file"][0]
}

func pdfBytes() []byte {
	return []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< >>\n%%EOF\n")
}

func TestUploadMaterialStoresPDF(t *testing.T) {
	env := newEngineEnv(t)
	storage := &fakeStorage{}
	service := newUploadServiceForTest(env, storage, 25)

	result, err := service.UploadMaterial(context.Background(), fileHeader(t, "Course Notes.PDF", pdfBytes()), nil, nil)
	require.NoError(t, err)
	require.Equal(t, "application/pdf", result.MimeType)
	require.Equal(t, "course-notes.pdf", result.FileName)
	require.Equal(t, "https://cdn.test/course-notes.pdf", result.URL)
	require.Len(t, result.Checksum, 64)
	require.EqualValues(t, len(pdfBytes()), result.SizeBytes)
	require.Equal(t, []string{"course-notes.pdf"}, storage.uploads)
}

func TestUploadMaterialAttachesToModule(t *testing.T) {
	env := newEngineEnv(t)
	service := newUploadServiceForTest(env, &fakeStorage{}, 25)
	ctx := context.Background()

	enrollment := env.enroll(t, percentageCourse(100, "Intro"))
	modules := env.courseModules(t, enrollment.CourseID)
	moduleID := modules[0].ID

	result, err := service.UploadMaterial(ctx, fileHeader(t, "intro.pdf", pdfBytes()), &moduleID, nil)
	require.NoError(t, err)

	stored, err := env.courses.GetModule(ctx, moduleID)
	require.NoError(t, err)
	require.Equal(t, result.URL, stored.MaterialURL)
}

func TestUploadMaterialRejectsDisallowedType(t *testing.T) {
	env := newEngineEnv(t)
	service := newUploadServiceForTest(env, &fakeStorage{}, 25)

	_, err := service.UploadMaterial(context.Background(), fileHeader(t, "notes.txt", []byte("plain text body")), nil, nil)
	require.ErrorIs(t, err, ErrUploadTypeNotAllowed)
}

func TestUploadMaterialRejectsOversizedFile(t *testing.T) {
	env := newEngineEnv(t)
	service := newUploadServiceForTest(env, &fakeStorage{}, 1)

	oversized := append(pdfBytes(), bytes.Repeat([]byte("a"), 2*1024*1024)...)

	_, err := service.UploadMaterial(context.Background(), fileHeader(t, "big.pdf", oversized), nil, nil)
	require.ErrorIs(t, err, ErrUploadTooLarge)
}

func TestUploadMaterialRejectsCorruptZip(t *testing.T) {
	env := newEngineEnv(t)
	service := newUploadServiceForTest(env, &fakeStorage{}, 25)

	corrupt := append([]byte("PK\x03\x04"), bytes.Repeat([]byte{0x00}, 64)...)

	_, err := service.UploadMaterial(context.Background(), fileHeader(t, "archive.zip", corrupt), nil, nil)
	require.ErrorIs(t, err, ErrUploadScanFailed)
}

func TestUploadMaterialAcceptsValidZip(t *testing.T) {
	env := newEngineEnv(t)
	service := newUploadServiceForTest(env, &fakeStorage{}, 25)

	archive := &bytes.Buffer{}
	writer := zip.NewWriter(archive)
	entry, err := writer.Create("slides.txt")
	require.NoError(t, err)
	_, err = entry.Write([]byte("week one slides"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	result, err := service.UploadMaterial(context.Background(), fileHeader(t, "week1.zip", archive.Bytes()), nil, nil)
	require.NoError(t, err)
	require.Equal(t, "application/zip", result.MimeType)
}
