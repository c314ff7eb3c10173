// File: internal/prompt/grammar.go
package prompt

// GBNF grammars for grammar-constrained decoding on the local backend. Each
// grammar must describe exactly the object shape its schema's prompt asks
// for; they are versioned together with the prompts and the persisted
// document fields, and any change to one requires changing all three.
// Grammar builder reference: https://grammar.intrinsiclabs.ai/

const longGrammar = `root ::= Article
Summaries ::= "{"   ws   "\"short_summary\":"   ws   string   ","   ws   "\"long_summary\":"   ws   string   "}" ws
Metadata ::= "{"   ws   "\"authors\":"   ws   stringlist   ","   ws   "\"title\":"   ws   string   ","   ws   "\"slug\":"   ws   string   ","   ws   "\"categories\":"   ws   stringlist   ","   ws   "\"countries\":"   ws   stringlist   ","  ws   "\"date_published\":"   ws   string   "}" ws
Article ::= "{"   ws   "\"metadata\":"   ws   Metadata   ","   ws   "\"summaries\":"   ws   Summaries   "}" ws
string ::= "\""   ([^"]*)   "\"" ws
ws ::= ([ \t\n] ws)?
stringlist ::= "["   ws   "]" | "["   ws   string   (","   ws   string)*   ws   "]" ws
`

const shortGrammar = `root ::= Article
Metadata ::= "{"   ws   "\"slug\":"   ws   string   ","   ws   "\"categories\":"   ws   stringlist   ","   ws   "\"countries\":"   ws   stringlist   "}" ws
Article ::= "{"   ws   "\"metadata\":"   ws   Metadata   ","   ws   "\"short_summary\":"   ws   string  "}" ws
string ::= "\""   ([^"]*)   "\"" ws
ws ::= ([ \t\n] ws)?
stringlist ::= "["   ws   "]" | "["   ws   string   (","   ws   string)*   ws   "]" ws
`

// Grammar returns the GBNF description matching the schema.
func (s Schema) Grammar() string {
	if s == SchemaShort {
		return shortGrammar
	}
	return longGrammar
}
