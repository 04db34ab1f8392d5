package verse

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/kailas-cloud/ayat/internal/db"
)

var columns = []string{
	"quran_id", "juz_id", "surah_id", "ayah_id", "source", "transliteration",
	"surah_name_ar", "surah_name_ur", "surah_name_en", "surah_type",
	"text_ar", "text_ur", "text_en",
}

func newMockRepo(t *testing.T) (*Repo, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, m, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return New(sqlDB), m
}

func TestFindByIDs_ReturnsRowsInStoreOrder(t *testing.T) {
	repo, m := newMockRepo(t)

	rows := sqlmock.NewRows(columns).
		AddRow(9, 1, 1, 9, "tanzil", "", "الفاتحة", "الفاتحہ", "Al-Fatiha", "Makki", "ar9", "ur9", "en9").
		AddRow(7, 1, 1, 7, nil, nil, nil, nil, nil, nil, "ar7", nil, "en7")
	m.ExpectQuery("SELECT quran_id").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(rows)

	got, err := repo.FindByIDs(context.Background(), []int64{7, 3, 9})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[0].QuranID != 9 || got[0].SurahNameEn != "Al-Fatiha" || got[0].SurahType != "Makki" {
		t.Errorf("unexpected first row: %+v", got[0])
	}
	if got[1].QuranID != 7 || got[1].Urdu != "" || got[1].English != "en7" {
		t.Errorf("NULL columns must scan as empty strings: %+v", got[1])
	}
	if err := m.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestFindByIDs_Empty(t *testing.T) {
	repo, _ := newMockRepo(t)
	got, err := repo.FindByIDs(context.Background(), nil)
	if err != nil || got != nil {
		t.Errorf("got=%v err=%v", got, err)
	}
}

func TestFindByIDs_QueryError(t *testing.T) {
	repo, m := newMockRepo(t)
	m.ExpectQuery("SELECT quran_id").WillReturnError(errors.New("connection refused"))

	_, err := repo.FindByIDs(context.Background(), []int64{1})
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpSelect {
		t.Errorf("expected SELECT db.Error, got %v", err)
	}
}

func TestFindByIDs_RowError(t *testing.T) {
	repo, m := newMockRepo(t)
	rows := sqlmock.NewRows(columns).
		AddRow(1, 1, 1, 1, "", "", "", "", "", "", "a", "b", "c").
		RowError(0, errors.New("broken pipe"))
	m.ExpectQuery("SELECT quran_id").WillReturnRows(rows)

	if _, err := repo.FindByIDs(context.Background(), []int64{1}); err == nil {
		t.Fatal("expected error")
	}
}
