// Package integrations provides the shared HTTP client used to talk to
// remote artifact repositories.
//
// [Client] wraps net/http with retries for transient failures, a
// byte-level response cache backed by [cache.Cache], and observability
// hooks for every request. Repository-specific clients live in
// subpackages; [maven] understands the Maven 2 repository layout.
//
// Errors are reported through two sentinels: [ErrNotFound] for 404
// responses and [ErrNetwork] for transport failures and unexpected status
// codes. 5xx responses and connection errors are retried.
//
// [cache.Cache]: github.com/matzehuels/depcollect/pkg/cache.Cache
// [maven]: github.com/matzehuels/depcollect/pkg/integrations/maven
package integrations
