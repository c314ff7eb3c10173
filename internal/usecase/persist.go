// File: internal/usecase/persist.go
package usecase

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pappitti/semi-agentic-knowledge-base/internal/domain/model"
)

// checkSlug guarantees a usable, unique slug. Empty or unsluggable input
// falls back to the URL-derived slug; collisions are resolved by appending a
// digit and retrying. Each append lengthens the candidate, so the loop
// terminates once it outgrows every stored slug.
func (u *ingestUC) checkSlug(ctx context.Context, slug, sourceURL string) string {
	slug = Slugify(slug)
	if slug == "" {
		slug = URLToSlug(sourceURL)
	}
	for n := 0; ; n++ {
		exists, err := u.docs.SlugExists(ctx, slug)
		if err != nil {
			u.log.Warn().Str("slug", slug).Err(err).Msg("slug lookup failed")
			return slug
		}
		if !exists {
			return slug
		}
		slug += strconv.Itoa(n % 10)
	}
}

// persistDraft writes the attempt log and upserts the document with its
// satellite entities and thumbnails. The attempt log goes first: even when
// the upsert fails the pass stays auditable. Returns the slug the record was
// stored under.
func (u *ingestUC) persistDraft(ctx context.Context, draft *model.Draft, plog *model.AttemptLog) (string, error) {
	if err := u.logs.Save(ctx, plog); err != nil {
		u.log.Warn().Str("url", draft.URL).Err(err).Msg("attempt log save failed")
	}

	slug := u.checkSlug(ctx, draft.Slug, draft.URL)
	draft.Slug = slug

	fields := model.DocumentFields{
		Slug:            slug,
		Title:           draft.Title,
		SourceURL:       draft.URL,
		PublicationDate: ParsePublicationDate(draft.DatePublished),
		Overview:        draft.Overview,
		Summary:         draft.Summary,
		SummaryType:     draft.SummaryType,
		Model:           draft.ModelUsed,
		IsDraft:         true,
	}

	doc, err := u.docs.Upsert(ctx, fields)
	if err != nil {
		return slug, err
	}

	for _, author := range draft.Authors {
		if err := u.docs.AppendRelated(ctx, doc.ID, model.RelatedAuthor, author); err != nil {
			u.log.Warn().Str("slug", slug).Err(err).Msg("author attach failed")
		}
	}
	for _, category := range draft.Categories {
		if err := u.docs.AppendRelated(ctx, doc.ID, model.RelatedCategory, category); err != nil {
			u.log.Warn().Str("slug", slug).Err(err).Msg("category attach failed")
		}
	}
	for _, country := range draft.Countries {
		if err := u.docs.AppendRelated(ctx, doc.ID, model.RelatedCountry, country); err != nil {
			u.log.Warn().Str("slug", slug).Err(err).Msg("country attach failed")
		}
	}

	for i, data := range draft.Thumbnails {
		relPath, err := u.assets.Save(data, fmt.Sprintf("%s_%d.png", slug, i))
		if err != nil {
			u.log.Warn().Str("slug", slug).Err(err).Msg("thumbnail save failed")
			continue
		}
		imgID, err := u.docs.AttachImage(ctx, doc.ID, relPath)
		if err != nil {
			u.log.Warn().Str("slug", slug).Err(err).Msg("image attach failed")
			continue
		}
		if i == 0 {
			if err := u.docs.SetDefaultImage(ctx, doc.ID, imgID); err != nil {
				u.log.Warn().Str("slug", slug).Err(err).Msg("default image failed")
			}
		}
	}

	return slug, nil
}
