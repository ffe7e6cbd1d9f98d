// Package config resolves configuration values from three layers: the
// override namespace (system properties and environment), a properties file
// loaded from ~/.jline.rc or the location named by jline.configuration, and
// caller supplied defaults. It also answers host queries such as the user
// home directory, OS name and preferred text encoding.
package config
