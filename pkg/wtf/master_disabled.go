//go:build wtf_disable

package wtf

const masterEnable = false
