// Package manifest loads object files described in YAML.
//
//	machine: amd64
//	sections:
//	  - name: .text
//	    characteristics: [cnt_code, mem_execute, mem_read, align_16]
//	    data: "e8 00000000 c3"
//	    relocations:
//	      - {offset: 1, symbol: puts, type: rel32}
//	symbols:
//	  - name: .text
//	    section: .text
//	    storage_class: static
//	    aux:
//	      - section_definition: {section: .text}
//	  - name: main
//	    section: .text
//	    storage_class: external
//	    type: {complex: function}
//	  - name: puts
//	    storage_class: external
//
// Names are resolved after the whole document is read, so relocations may
// refer to symbols declared later.
package manifest
