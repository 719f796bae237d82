/*
Package library stores projects as files.

A project file is named <name>.project.<format>[.<compression>] where
format is json, yaml, yml or toml and compression is gz or zst:

	site.project.json
	blog.project.yaml.gz
	shop.project.toml.zst

JSON goes through sonic, YAML through goccy/go-yaml and TOML through
go-toml. Compression is chosen by extension on save and sniffed from the
content on load. Scan walks the root with fastwalk and filters with a
doublestar pattern.
*/
package library
