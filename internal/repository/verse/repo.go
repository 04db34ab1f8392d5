package verse

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/kailas-cloud/ayat/internal/db"
	"github.com/kailas-cloud/ayat/internal/domain/verse"
)

const selectByIDs = `
	SELECT quran_id, juz_id, surah_id, ayah_id, source, transliteration,
	       surah_name_ar, surah_name_ur, surah_name_en, surah_type,
	       text_ar, text_ur, text_en
	FROM quran_ayah
	WHERE quran_id = ANY($1)
`

// querier is the consumer interface for text lookups (ISP).
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Repo reads canonical verse text from the relational store.
type Repo struct {
	db querier
}

// New creates a verse repository.
func New(q querier) *Repo {
	return &Repo{db: q}
}

// FindByIDs returns the rows that exist for ids, in no particular order.
// Missing ids are simply absent from the result.
func (r *Repo) FindByIDs(ctx context.Context, ids []int64) ([]verse.Text, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, selectByIDs, pq.Array(ids))
	if err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	defer rows.Close()

	out := make([]verse.Text, 0, len(ids))
	for rows.Next() {
		var (
			t                                     verse.Text
			juz, surah, ayah                      sql.NullInt64
			source, translit, nameAr, nameUr      sql.NullString
			nameEn, surahType, textAr, textUr, en sql.NullString
		)
		if err := rows.Scan(
			&t.QuranID, &juz, &surah, &ayah, &source, &translit,
			&nameAr, &nameUr, &nameEn, &surahType,
			&textAr, &textUr, &en,
		); err != nil {
			return nil, fmt.Errorf("scan quran_ayah: %w", err)
		}
		t.JuzID = int(juz.Int64)
		t.SurahID = int(surah.Int64)
		t.AyahID = int(ayah.Int64)
		t.Source = source.String
		t.Transliteration = translit.String
		t.SurahNameAr = nameAr.String
		t.SurahNameUr = nameUr.String
		t.SurahNameEn = nameEn.String
		t.SurahType = surahType.String
		t.Arabic = textAr.String
		t.Urdu = textUr.String
		t.English = en.String
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	return out, nil
}
