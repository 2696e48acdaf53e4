package projections

import (
	"context"
	"slices"
	"strings"

	"photocontest/internal/application/listutil"
	domainImage "photocontest/internal/domain/image"
)

// ImageListSortColumns are the columns the admin image list can sort by.
var ImageListSortColumns = []string{"uploaded", "uploader", "filename"}

// ImageListQuery carries query parameters.
type ImageListQuery struct {
	Year   int
	Params listutil.Params
}

// ImageListResult is one page of a year's images.
type ImageListResult struct {
	Images []domainImage.Image
	Page   listutil.PageInfo
}

// ImageListDeps holds dependencies for QueryImageList.
type ImageListDeps struct {
	ImageStore ImageStore
}

// QueryImageList pages through every image of a year, hidden ones included.
// PRE: Year > 0
// POST: Images match Search against uploader, filename and description; ordered by Sort
// INVARIANT: without Sort the store order (newest upload first) is kept
func QueryImageList(ctx context.Context, query ImageListQuery, deps ImageListDeps) (ImageListResult, error) {
	images, err := deps.ImageStore.ListByYear(ctx, query.Year, false)
	if err != nil {
		return ImageListResult{}, err
	}

	p := query.Params
	if p.Search != "" {
		images = slices.DeleteFunc(images, func(img domainImage.Image) bool {
			return !matchesSearch(img, p.Search)
		})
	}

	if cmp := imageComparator(p.Sort); cmp != nil {
		slices.SortStableFunc(images, func(a, b domainImage.Image) int {
			if p.Desc {
				return cmp(b, a)
			}
			return cmp(a, b)
		})
	}

	page := listutil.NewPageInfo(p.Page, p.PerPage, len(images))
	return ImageListResult{Images: listutil.Slice(images, page), Page: page}, nil
}

func matchesSearch(img domainImage.Image, needle string) bool {
	for _, field := range []string{img.Uploader, img.Filename, img.Description} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func imageComparator(column string) func(a, b domainImage.Image) int {
	switch column {
	case "uploaded":
		return func(a, b domainImage.Image) int { return a.UploadedAt.Compare(b.UploadedAt) }
	case "uploader":
		return func(a, b domainImage.Image) int {
			return strings.Compare(strings.ToLower(a.Uploader), strings.ToLower(b.Uploader))
		}
	case "filename":
		return func(a, b domainImage.Image) int { return strings.Compare(a.Filename, b.Filename) }
	}
	return nil
}
