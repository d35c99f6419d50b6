// Package s3 uploads CloudFormation templates to S3.
//
// Templates larger than the inline body limit, or all templates when a
// template bucket is configured, are stored under a zone-scoped key and
// handed to CloudFormation as a TemplateURL. The object is removed once
// CloudFormation has accepted the request.
package s3
