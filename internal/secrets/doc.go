// Package secrets retrieves a named secret from a remote store and decodes its
// payload into a flat key/value mapping. The store is reached through the
// Transport interface; NewAWSTransport provides the AWS Secrets Manager
// implementation used in production.
package secrets
