// Package parser extracts Node and Edge values from source files using
// tree-sitter grammars. Ten languages have real grammar bindings; any
// other extension falls back to a single whole-file module node with
// no edges, so an unsupported file is a degraded result, never an
// error.
package parser

import (
	tree_sitter_zig "github.com/tree-sitter-grammars/tree-sitter-zig/bindings/go"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/codegraph-dev/codegraph/internal/types"
)

// grammarSpec binds one language's grammar, its symbol-extraction
// query and its call-site query to the node kind each capture name
// represents. Unlike the one-setup-function-per-language style, every
// language is described declaratively here so the pool can treat them
// uniformly.
type grammarSpec struct {
	name         string
	exts         []string
	languageFunc func() *tree_sitter.Language
	symbolQuery  string
	callQuery    string
	captureKind  map[string]types.NodeKind
	containers   map[types.NodeKind]bool // kinds that can own a qualified-name scope
}

var registry = buildRegistry()

func languageByExt(ext string) (*grammarSpec, bool) {
	spec, ok := registry[ext]
	return spec, ok
}

func buildRegistry() map[string]*grammarSpec {
	specs := []*grammarSpec{
		{
			name:         "go",
			exts:         []string{".go"},
			languageFunc: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_go.Language()) },
			symbolQuery: `
				(function_declaration name: (identifier) @function.name) @function
				(method_declaration name: (field_identifier) @method.name) @method
				(type_spec name: (type_identifier) @struct.name type: (struct_type)) @struct
				(type_spec name: (type_identifier) @interface.name type: (interface_type)) @interface
				(type_spec name: (type_identifier) @type.name) @type
				(import_spec path: (interpreted_string_literal) @import.path) @import
			`,
			callQuery: `(call_expression function: (identifier) @call.target) @call`,
			captureKind: map[string]types.NodeKind{
				"function": types.KindFunction, "method": types.KindMethod,
				"struct": types.KindStruct, "interface": types.KindInterface,
				"type": types.KindTypeAlias, "import": types.KindImport,
			},
		},
		{
			name:         "javascript",
			exts:         []string{".js", ".jsx"},
			languageFunc: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_javascript.Language()) },
			symbolQuery: `
				(function_declaration name: (identifier) @function.name) @function
				(method_definition name: (property_identifier) @method.name) @method
				(class_declaration name: (identifier) @class.name) @class
				(import_statement source: (string) @import.source) @import
			`,
			callQuery: `(call_expression function: (identifier) @call.target) @call`,
			captureKind: map[string]types.NodeKind{
				"function": types.KindFunction, "method": types.KindMethod,
				"class": types.KindClass, "import": types.KindImport,
			},
		},
		{
			name:         "typescript",
			exts:         []string{".ts", ".tsx"},
			languageFunc: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()) },
			symbolQuery: `
				(function_declaration name: (identifier) @function.name) @function
				(method_definition name: (property_identifier) @method.name) @method
				(class_declaration name: (type_identifier) @class.name) @class
				(interface_declaration name: (type_identifier) @interface.name) @interface
				(type_alias_declaration name: (type_identifier) @type.name) @type
				(enum_declaration name: (identifier) @enum.name) @enum
				(import_statement source: (string) @import.source) @import
			`,
			callQuery: `(call_expression function: (identifier) @call.target) @call`,
			captureKind: map[string]types.NodeKind{
				"function": types.KindFunction, "method": types.KindMethod,
				"class": types.KindClass, "interface": types.KindInterface,
				"type": types.KindTypeAlias, "enum": types.KindEnum, "import": types.KindImport,
			},
		},
		{
			name:         "python",
			exts:         []string{".py"},
			languageFunc: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_python.Language()) },
			symbolQuery: `
				(function_definition name: (identifier) @function.name) @function
				(class_definition name: (identifier) @class.name) @class
				(import_statement) @import
				(import_from_statement) @import
			`,
			callQuery: `(call function: (identifier) @call.target) @call`,
			captureKind: map[string]types.NodeKind{
				"function": types.KindFunction, "class": types.KindClass, "import": types.KindImport,
			},
		},
		{
			name:         "java",
			exts:         []string{".java"},
			languageFunc: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_java.Language()) },
			symbolQuery: `
				(method_declaration name: (identifier) @method.name) @method
				(constructor_declaration name: (identifier) @method.name) @method
				(class_declaration name: (identifier) @class.name) @class
				(interface_declaration name: (identifier) @interface.name) @interface
				(enum_declaration name: (identifier) @enum.name) @enum
				(import_declaration) @import
			`,
			callQuery: `(method_invocation name: (identifier) @call.target) @call`,
			captureKind: map[string]types.NodeKind{
				"method": types.KindMethod, "class": types.KindClass,
				"interface": types.KindInterface, "enum": types.KindEnum, "import": types.KindImport,
			},
		},
		{
			name:         "csharp",
			exts:         []string{".cs"},
			languageFunc: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_csharp.Language()) },
			symbolQuery: `
				(method_declaration name: (identifier) @method.name) @method
				(class_declaration name: (identifier) @class.name) @class
				(interface_declaration name: (identifier) @interface.name) @interface
				(struct_declaration name: (identifier) @struct.name) @struct
				(enum_declaration name: (identifier) @enum.name) @enum
				(using_directive) @import
			`,
			callQuery: `(invocation_expression function: (identifier) @call.target) @call`,
			captureKind: map[string]types.NodeKind{
				"method": types.KindMethod, "class": types.KindClass, "interface": types.KindInterface,
				"struct": types.KindStruct, "enum": types.KindEnum, "import": types.KindImport,
			},
		},
		{
			name:         "php",
			exts:         []string{".php", ".phtml"},
			languageFunc: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_php.LanguagePHP()) },
			symbolQuery: `
				(class_declaration name: (name) @class.name) @class
				(interface_declaration name: (name) @interface.name) @interface
				(trait_declaration name: (name) @trait.name) @trait
				(function_definition name: (name) @function.name) @function
				(method_declaration name: (name) @method.name) @method
				(namespace_use_declaration) @import
			`,
			callQuery: `(function_call_expression function: (name) @call.target) @call`,
			captureKind: map[string]types.NodeKind{
				"class": types.KindClass, "interface": types.KindInterface, "trait": types.KindClass,
				"function": types.KindFunction, "method": types.KindMethod, "import": types.KindImport,
			},
		},
		{
			name:         "rust",
			exts:         []string{".rs"},
			languageFunc: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_rust.Language()) },
			symbolQuery: `
				(function_item name: (identifier) @function.name) @function
				(struct_item name: (type_identifier) @struct.name) @struct
				(enum_item name: (type_identifier) @enum.name) @enum
				(trait_item name: (type_identifier) @interface.name) @interface
				(use_declaration) @import
				(mod_item name: (identifier) @module.name) @module
			`,
			callQuery: `(call_expression function: (identifier) @call.target) @call`,
			captureKind: map[string]types.NodeKind{
				"function": types.KindFunction, "struct": types.KindStruct, "enum": types.KindEnum,
				"interface": types.KindInterface, "import": types.KindImport, "module": types.KindModule,
			},
		},
		{
			name:         "cpp",
			exts:         []string{".cpp", ".cc", ".cxx", ".c", ".h", ".hpp"},
			languageFunc: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_cpp.Language()) },
			symbolQuery: `
				(function_definition declarator: (function_declarator declarator: (identifier) @function.name)) @function
				(class_specifier name: (type_identifier) @class.name) @class
				(struct_specifier name: (type_identifier) @struct.name) @struct
				(enum_specifier name: (type_identifier) @enum.name) @enum
				(preproc_include) @import
			`,
			callQuery: `(call_expression function: (identifier) @call.target) @call`,
			captureKind: map[string]types.NodeKind{
				"function": types.KindFunction, "class": types.KindClass,
				"struct": types.KindStruct, "enum": types.KindEnum, "import": types.KindImport,
			},
		},
		{
			name:         "zig",
			exts:         []string{".zig"},
			languageFunc: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_zig.Language()) },
			symbolQuery: `
				(function_declaration (identifier) @function.name) @function
				(variable_declaration (identifier) @struct.name (struct_declaration)) @struct
			`,
			callQuery: `(call_expression (identifier) @call.target) @call`,
			captureKind: map[string]types.NodeKind{
				"function": types.KindFunction, "struct": types.KindStruct,
			},
		},
	}

	reg := make(map[string]*grammarSpec, 16)
	for _, s := range specs {
		s.containers = map[types.NodeKind]bool{
			types.KindClass: true, types.KindStruct: true, types.KindInterface: true, types.KindModule: true,
		}
		for _, ext := range s.exts {
			reg[ext] = s
		}
	}
	return reg
}
