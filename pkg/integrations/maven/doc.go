// Package maven fetches files from a Maven 2 layout repository over HTTP.
//
// Paths follow the standard layout, with dots in the groupId turned into
// directories:
//
//	<base>/org/apache/commons/commons-lang3/3.14.0/commons-lang3-3.14.0.pom
//
// [Client.FetchPOM] returns raw POM bytes, [Client.HasArtifact] probes
// for a classifier or type variant, and [Client.LatestVersion] reads
// maven-metadata.xml. Responses are cached through the shared
// [integrations.Client].
//
// [integrations.Client]: github.com/matzehuels/depcollect/pkg/integrations.Client
package maven
