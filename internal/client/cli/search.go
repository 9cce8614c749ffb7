package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/quzhan/internal/client/models"
	"github.com/dmitrijs2005/quzhan/internal/client/pager"
)

const hotTermsLimit = 10

func (a *App) Search(ctx context.Context, query string) error {
	res, err := a.searchService.Search(ctx, models.SearchQuery{Q: query, Page: 1, Size: a.config.PageSize})
	if err != nil {
		return err
	}
	if len(res.Hits) == 0 {
		printlnFn("Nothing found.")
		return nil
	}
	for i := range res.Hits {
		printHit(&res.Hits[i])
	}
	size := res.Size
	if size == 0 {
		size = a.config.PageSize
	}
	printlnFn(fmt.Sprintf("%d results, %d pages (%d ms)", res.Total, pager.TotalPages(res.Total, size), res.TookMs))
	return nil
}

func (a *App) HotTerms(ctx context.Context) error {
	terms, err := a.searchService.HotTerms(ctx, hotTermsLimit)
	if err != nil {
		return err
	}
	if len(terms) == 0 {
		printlnFn("No searches yet.")
		return nil
	}
	for i, t := range terms {
		printlnFn(fmt.Sprintf("%2d. %s (%d)", i+1, t.Term, t.Count))
	}
	return nil
}
