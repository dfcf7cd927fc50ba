// Package field defines the closed set of field types a schema document
// may declare, and the predicates the parser and validator use to reason
// about them.
//
// Schema documents spell types with lowercase tokens:
//
//	fields:
//	  id:    {type: uuid, primary: true}
//	  email: {type: string, unique: true, required: true, max_length: 255}
//	  bio:   {type: text}
//	  meta:  {type: json}
//
// Unknown tokens are rejected at parse time; the enum never grows at
// runtime.
package field
