// Package schema builds JSON Schema fragments for tool parameters that the
// struct reflector cannot express on its own, such as a value the model may
// send either as a number or as a string.
//
//	idSchema := schema.CreateUnionSchema("TMDB movie id",
//		jsonschema.Integer, jsonschema.String)
//
//	params := schema.CreateObjectSchema(map[string]*jsonschema.Schema{
//		"query": schema.CreateStringSchema("Search text"),
//	}, []string{"query"})
package schema
