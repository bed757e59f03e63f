// Package pagination streams link-chained result pages of a finished
// ID-mapping job.
//
// The service returns the first page for the result location plus the
// requested query parameters. Each response may carry a Link header naming
// the next page:
//
//	Link: <https://rest.uniprot.org/idmapping/uniprotkb/results/ab12?cursor=xyz&size=500>; rel="next"
//
// The next URL already encodes the continuation state and is requested
// verbatim. A response without a Link header is the last page.
//
// Example usage:
//
//	p := pagination.NewPaginator(apiClient)
//	for page, err := range p.Paginate(ctx, resultURL, params) {
//		if err != nil {
//			return err
//		}
//		process(page.Data)
//	}
//
// The paginator:
//   - Fetches pages strictly in link order, one request per page
//   - Is lazy: nothing is requested until iteration starts
//   - Stops early when the consumer breaks out of the loop
//   - Reports a failed page as *PageFetchError after all earlier pages
//   - Ends with ErrLinkLoop when a next link revisits a fetched page
//
// Pages are never cached; ranging over the sequence again re-fetches
// from the first URL.
package pagination
