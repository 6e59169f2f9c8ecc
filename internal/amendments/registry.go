package amendments

import "github.com/wch1125/proviso-core/internal/model"

var registry = map[model.AmendmentAction]Handler{
	model.AmendReplace: &ReplaceHandler{},
	model.AmendAdd:     &AddHandler{},
	model.AmendRemove:  &RemoveHandler{},
}

func Get(action model.AmendmentAction) (Handler, bool) {
	h, ok := registry[action]
	return h, ok
}
