// Package render produces the archive's HTML.
//
// Templates are plain HTML with <!--placeholder--> comments, embedded in the
// binary and individually overridable from a directory. Post and comment
// fragments are written once and later recovered verbatim from existing
// pages, so the only id attribute a template may carry is the item id on a
// fragment's outer element.
package render
