// Package output serializes documents and writes them to disk.
//
//   - Serialization (serializer.go): canonical YAML for a decoded manifest
//     document, with sorted keys and two-space indentation.
//
//   - Writers (writer.go): the [Writer] interface and [FileWriter], which
//     creates parent directories and writes whole files.
package output
