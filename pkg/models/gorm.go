package models

func ModelsToAutoMigrate() []interface{} {
	return []interface{}{
		&Part{},
		&SearchIndex{},
		&Document{},
		&Notice{},
		&NoticeCFRPart{},
		&Layer{},
		&Diff{},
	}
}
