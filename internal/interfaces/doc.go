// Package interfaces documents the core abstractions used throughout the application.
//
// # Data Access Interfaces
//
//   - ListRegistry: list CRUD (internal/http/lists.go)
//   - MembershipManager: list membership and ordering (internal/http/memberships.go)
//   - FavoritesMapper: favorite slot assignment (internal/http/favorites.go)
//   - BookStore: book catalog (internal/http/books.go)
//
// # External Service Interfaces
//
//   - MetadataProvider: book metadata from external catalogs (internal/metadata/openlibrary.go)
//   - CoverCache: local cover image mirror (internal/http/covers.go)
//
// # Background Task Interfaces
//
//   - ListCompactor: position renumbering (internal/tasks/compact_list.go)
//   - BookEnricher: metadata backfill (internal/tasks/enrich_book.go)
//
// # Adding a New Metadata Provider
//
// To add a new source of book metadata (e.g., Google Books):
//
//  1. Implement MetadataProvider in internal/metadata/
//
//     type GoogleBooksClient struct {
//         apiKey     string
//         httpClient *http.Client
//     }
//
//     func (c *GoogleBooksClient) SearchByISBN(ctx context.Context, isbn string) (*BookMetadata, error)
//
//     var _ MetadataProvider = (*GoogleBooksClient)(nil)
//
//  2. Swap it in when constructing the enricher in entrypoint.go
//
// # Adding a New Import Source
//
// To import books from another service's export format:
//
//  1. Add a parser in internal/importers/ producing []GoodreadsRow, or
//     generalize the row type if the format carries extra fields
//  2. Feed the rows through Pipeline.Import
//  3. Expose it as a new CLI subcommand in internal/cli/
//
// # Compile-Time Interface Checks
//
// All implementations include compile-time checks so a missing method fails
// the build rather than a request:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full set.
package interfaces
