package report

import "strconv"

func formatInt(i int) string {
	return strconv.Itoa(i)
}
