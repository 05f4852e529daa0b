package reference

// OptionDirectory описывает один справочник опций для Picklist-атрибутов
type OptionDirectory struct {
	Name    string   `yaml:"name" json:"name"`
	Options []string `yaml:"options" json:"options"`
}
