package models

// FileFilter — предикат доступа к файлам, результат работы резолвера
// прав. Универсальный фильтр (All) пропускает любой идентификатор,
// пустой — ни одного. Порядок идентификаторов не гарантируется,
// дубликаты при построении схлопываются.
type FileFilter struct {
	All bool     `json:"all"`      // Универсальный доступ (администратор)
	IDs []string `json:"file_ids"` // Разрешённые идентификаторы файлов
}

// NewFileFilter собирает фильтр из набора идентификаторов,
// отбрасывая пустые значения и дубликаты.
func NewFileFilter(ids ...string) FileFilter {
	seen := make(map[string]struct{}, len(ids))
	var result []string
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return FileFilter{IDs: result}
}

// UniversalFileFilter возвращает фильтр, пропускающий любые файлы.
func UniversalFileFilter() FileFilter {
	return FileFilter{All: true}
}

// Allows сообщает, разрешает ли фильтр чтение файла с данным идентификатором.
func (f FileFilter) Allows(id string) bool {
	if f.All {
		return true
	}
	for _, allowed := range f.IDs {
		if allowed == id {
			return true
		}
	}
	return false
}
