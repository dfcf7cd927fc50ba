// Package schema groups the vocabulary shared between schema documents
// and the compiler.
//
// Schema documents are YAML files, one entity per document:
//
//	name: Post
//	table: posts
//	soft_delete: true
//	fields:
//	  id:
//	    type: integer
//	    primary: true
//	  title:
//	    type: string
//	    required: true
//	    max_length: 200
//	relations:
//	  - type: many_to_one
//	    target: User
//	    back_populates: posts
//
// The [field] subpackage holds the closed type vocabulary those
// documents draw from; compiler/load reads the documents and
// compiler/gen turns them into artifacts.
package schema
