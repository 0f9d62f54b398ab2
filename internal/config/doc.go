// Package config defines installer settings and provides helpers to load,
// validate and save them in YAML format.
//
// The Config type holds the release coordinates (owner, repository, package
// name, base URL) plus local install parameters. Every field has a built-in
// default, so the installer runs without any settings file present.
package config
