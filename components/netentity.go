package components

import (
	"github.com/automoto/mirra-netsync/shared/netcomponents"
	"github.com/yohamta/donburi"
)

// NetEntityData mirrors one entity of the latest sampled world state.
type NetEntityData struct {
	State netcomponents.EntityState
	Local bool
}

var NetEntity = donburi.NewComponentType[NetEntityData]()
