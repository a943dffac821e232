package engine

// CurrentDrawer is the player the next automatic start would hand the pen to.
// DrawerIndex is reduced modulo the current player count because players may
// have joined or left since it was advanced.
func CurrentDrawer(r Room) (string, bool) {
	n := len(r.Players)
	if n == 0 {
		return "", false
	}
	return r.Players[normIndex(r.DrawerIndex, n)].ID, true
}

func nextDrawerIndex(r Room) int {
	n := len(r.Players)
	if n == 0 {
		return 0
	}
	return (normIndex(r.DrawerIndex, n) + 1) % n
}

func normIndex(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
